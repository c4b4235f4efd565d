package RSClientGo

import (
	"fmt"
	"strings"
)

type ScheduleFrequency string

const (
	ScheduleDaily   ScheduleFrequency = "DAILY"
	ScheduleWeekly  ScheduleFrequency = "WEEKLY"
	ScheduleMonthly ScheduleFrequency = "MONTHLY"
)

type ConnectorSchedule struct {
	Frequency   ScheduleFrequency `json:"type"`
	Enabled     bool              `json:"enabled"`
	HourOfDay   int               `json:"hourOfDay"`
	DaysOfWeek  []int             `json:"daysOfWeek,omitempty"`  // 1 = Monday .. 7 = Sunday
	DaysOfMonth []int             `json:"daysOfMonth,omitempty"` // 1 .. 31
}

func ParseScheduleFrequency(frequency string) (ScheduleFrequency, error) {
	f := ScheduleFrequency(strings.ToUpper(strings.TrimSpace(frequency)))
	switch f {
	case ScheduleDaily, ScheduleWeekly, ScheduleMonthly:
		return f, nil
	}
	return "", fmt.Errorf("unrecognized schedule frequency %v, expected one of DAILY, WEEKLY, MONTHLY", frequency)
}

func DailySchedule(hourOfDay int) ConnectorSchedule {
	return ConnectorSchedule{Frequency: ScheduleDaily, Enabled: true, HourOfDay: hourOfDay}
}

func WeeklySchedule(hourOfDay int, daysOfWeek ...int) ConnectorSchedule {
	return ConnectorSchedule{Frequency: ScheduleWeekly, Enabled: true, HourOfDay: hourOfDay, DaysOfWeek: daysOfWeek}
}

func MonthlySchedule(hourOfDay int, daysOfMonth ...int) ConnectorSchedule {
	return ConnectorSchedule{Frequency: ScheduleMonthly, Enabled: true, HourOfDay: hourOfDay, DaysOfMonth: daysOfMonth}
}

func (s ConnectorSchedule) Validate() error {
	if s.HourOfDay < 0 || s.HourOfDay > 23 {
		return fmt.Errorf("schedule hourOfDay %d is outside 0-23", s.HourOfDay)
	}

	switch s.Frequency {
	case ScheduleDaily:
		return nil
	case ScheduleWeekly:
		return checkDays("daysOfWeek", s.DaysOfWeek, 7)
	case ScheduleMonthly:
		return checkDays("daysOfMonth", s.DaysOfMonth, 31)
	}
	return fmt.Errorf("unrecognized schedule frequency %v, expected one of DAILY, WEEKLY, MONTHLY", s.Frequency)
}

func checkDays(name string, days []int, max int) error {
	if len(days) == 0 {
		return fmt.Errorf("schedule %v must not be empty", name)
	}
	for _, d := range days {
		if d < 1 || d > max {
			return fmt.Errorf("schedule %v value %d is outside 1-%d", name, d, max)
		}
	}
	return nil
}

// daysOfWeek is only sent for weekly schedules and daysOfMonth only for monthly ones
func (s ConnectorSchedule) body() (map[string]interface{}, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	body := map[string]interface{}{
		"type":      s.Frequency,
		"enabled":   s.Enabled,
		"hourOfDay": s.HourOfDay,
	}
	switch s.Frequency {
	case ScheduleWeekly:
		body["daysOfWeek"] = s.DaysOfWeek
	case ScheduleMonthly:
		body["daysOfMonth"] = s.DaysOfMonth
	}
	return body, nil
}

func (s ConnectorSchedule) String() string {
	if !s.Enabled {
		return "disabled"
	}
	switch s.Frequency {
	case ScheduleWeekly:
		return fmt.Sprintf("weekly at %02d:00 on days %v", s.HourOfDay, s.DaysOfWeek)
	case ScheduleMonthly:
		return fmt.Sprintf("monthly at %02d:00 on days %v", s.HourOfDay, s.DaysOfMonth)
	}
	return fmt.Sprintf("daily at %02d:00", s.HourOfDay)
}
