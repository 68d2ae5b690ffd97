package world

import (
	"fmt"
	"strings"
)

type Weather string

const (
	WeatherClear   Weather = "CLEAR"
	WeatherRain    Weather = "RAIN"
	WeatherThunder Weather = "THUNDER"
)

func ParseWeather(s string) (Weather, error) {
	switch wt := Weather(strings.ToUpper(strings.TrimSpace(s))); wt {
	case WeatherClear, WeatherRain, WeatherThunder:
		return wt, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownWeather, s)
}

func (w *World) Weather() Weather { return w.weather }

// HasStorm is true for rain and thunder.
func (w *World) HasStorm() bool { return w.weather != WeatherClear }

func (w *World) IsThundering() bool { return w.weather == WeatherThunder }

// SetWeather forces wt for ticks. With ticks 0 the weather holds until the
// next call, or until the natural cycle picks a new spell when enabled.
func (w *World) SetWeather(wt Weather, ticks uint64) {
	w.weather = wt
	switch {
	case ticks > 0:
		w.weatherUntil = w.tick + ticks
	case w.cfg.WeatherCycle:
		w.weatherUntil = w.tick + w.spellLength(wt)
	default:
		w.weatherUntil = 0
	}
}

func (w *World) TimeOfDay() int { return w.timeOfDay }

func (w *World) SetTimeOfDay(t int) {
	w.timeOfDay = ((t % w.cfg.DayTicks) + w.cfg.DayTicks) % w.cfg.DayTicks
}

func (w *World) nextWeather() {
	if !w.cfg.WeatherCycle {
		w.weather = WeatherClear
		w.weatherUntil = 0
		return
	}
	next := WeatherClear
	if w.weather == WeatherClear {
		next = WeatherRain
		if w.rng.Intn(3) == 0 {
			next = WeatherThunder
		}
	}
	w.weather = next
	w.weatherUntil = w.tick + w.spellLength(next)
}

// spellLength draws how long a natural spell of wt lasts.
func (w *World) spellLength(wt Weather) uint64 {
	if wt == WeatherClear {
		return uint64(12000 + w.rng.Intn(168000))
	}
	return uint64(12000 + w.rng.Intn(12000))
}
