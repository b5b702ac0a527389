package timeline

import (
	"slices"
	"time"

	"review-response-metrics/internal/models"
)

// состояние ревьювера внутри одного PR
type Status int

const (
	StatusUnrequested Status = iota
	StatusRequested
	StatusResponded
)

func (s Status) String() string {
	switch s {
	case StatusRequested:
		return "requested"
	case StatusResponded:
		return "responded"
	default:
		return "unrequested"
	}
}

// состояние одного ревьювера; PendingSince имеет смысл только в StatusRequested
type ReviewerState struct {
	Status       Status
	PendingSince time.Time
}

// состояния всех ревьюверов одного PR
type States map[string]ReviewerState

// результат прогона автомата по одному PR
type Result struct {
	ResponseTimes map[string][]float64
	Intervals     []models.ResponseInterval
	Final         States
}

// применяет одно событие к состоянию ревьювера
// принимает: текущее состояние и событие этого ревьювера
// возвращает: новое состояние, длительность ответа в часах и признак того, что ответ засчитан
func Step(state ReviewerState, ev models.TimelineEvent) (ReviewerState, float64, bool) {
	switch ev.Type {
	case models.EventReviewRequested:
		// повторный запрос перезапускает отсчет
		return ReviewerState{Status: StatusRequested, PendingSince: ev.At}, 0, false
	case models.EventReviewRequestRemoved:
		return ReviewerState{Status: StatusUnrequested}, 0, false
	case models.EventReviewed:
		if state.Status != StatusRequested {
			return state, 0, false
		}
		hours := ev.At.Sub(state.PendingSince).Hours()
		return ReviewerState{Status: StatusResponded}, hours, true
	default:
		return state, 0, false
	}
}

// прогоняет автомат по таймлайну одного PR
// принимает: PR вместе с отсортированными событиями
// возвращает: интервалы ответа по ревьюверам и конечные состояния
func Run(t models.PRTimeline) Result {
	pr := t.PR
	states := States{}
	res := Result{ResponseTimes: map[string][]float64{}}

	for i := 0; i < t.Len(); i++ {
		ev := t.At(i)
		if ev.Reviewer == "" {
			continue
		}
		if ev.Type == models.EventReviewed && ev.Reviewer == pr.Author {
			continue
		}

		next, hours, responded := Step(states[ev.Reviewer], ev)
		states[ev.Reviewer] = next
		if responded {
			res.add(pr, ev.Reviewer, hours, false)
		}
	}

	// запрос без ответа считается закрытым в момент мержа
	if pr.MergedAt != nil {
		reviewers := make([]string, 0, len(states))
		for reviewer := range states {
			reviewers = append(reviewers, reviewer)
		}
		slices.Sort(reviewers)

		for _, reviewer := range reviewers {
			state := states[reviewer]
			if state.Status != StatusRequested || reviewer == pr.Author {
				continue
			}
			res.add(pr, reviewer, pr.MergedAt.Sub(state.PendingSince).Hours(), true)
			states[reviewer] = ReviewerState{Status: StatusResponded}
		}
	}

	res.Final = states
	return res
}

// сокращение для Run, когда нужны только длительности
func ResponseTimes(t models.PRTimeline) map[string][]float64 {
	return Run(t).ResponseTimes
}

func (r *Result) add(pr models.PullRequest, reviewer string, hours float64, byMerge bool) {
	r.ResponseTimes[reviewer] = append(r.ResponseTimes[reviewer], hours)
	r.Intervals = append(r.Intervals, models.ResponseInterval{
		Reviewer:        reviewer,
		Repository:      pr.Repository,
		PRNumber:        pr.Number,
		Hours:           hours,
		ResolvedByMerge: byMerge,
	})
}

// возвращает ревьюверов, чей запрос всё ещё ожидает ответа
func (r Result) Pending() []string {
	var pending []string
	for reviewer, state := range r.Final {
		if state.Status == StatusRequested {
			pending = append(pending, reviewer)
		}
	}
	slices.Sort(pending)
	return pending
}
