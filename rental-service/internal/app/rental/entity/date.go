package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

const dateOnlyLayout = "2006-01-02"

// Date - дата из JSON запроса. Принимает RFC3339 и YYYY-MM-DD (так отдаёт
// <input type="date">); "" и null дают нулевое значение, обязательность
// проверяет сервис.
type Date struct {
	time.Time
}

// DateError - значение даты не удалось разобрать
type DateError struct {
	Value string
}

func (e *DateError) Error() string {
	return fmt.Sprintf("invalid date %q: expected YYYY-MM-DD or RFC3339", e.Value)
}

func NewDate(t time.Time) Date {
	return Date{Time: t}
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		d.Time = time.Time{}
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return &DateError{Value: string(data)}
	}

	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	d.Time = parsed
	return nil
}

// ParseDate разбирает строку даты; пустая строка - нулевое время
func ParseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(dateOnlyLayout, raw); err == nil {
		return t, nil
	}
	return time.Time{}, &DateError{Value: raw}
}

// timePtr переводит необязательную дату запроса в значение модели;
// пустая дата даёт nil
func timePtr(d *Date) *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}
