package models

import "time"

// представляет стандартизированный формат ответа с ошибкой API
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// содержит детали ошибки с кодом и сообщением
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// содержит метаданные Pull Request, полученные с хостинга репозиториев
type PullRequest struct {
	ID         int64      `json:"id"`
	Number     int        `json:"number"`
	Repository string     `json:"repository"`
	Author     string     `json:"author"`
	State      string     `json:"state"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	MergedAt   *time.Time `json:"merged_at,omitempty"`
}

// возвращает true если PR смержен
func (pr PullRequest) IsMerged() bool {
	return pr.MergedAt != nil
}

// возвращает true если PR открыт и ещё не смержен
func (pr PullRequest) IsOpen() bool {
	return pr.State == "open" && pr.MergedAt == nil
}

// тип события таймлайна PR
type EventType string

const (
	EventReviewRequested      EventType = "review_requested"
	EventReviewRequestRemoved EventType = "review_request_removed"
	EventReviewed             EventType = "reviewed"
	EventReadyForReview       EventType = "ready_for_review"
)

// каноническое событие таймлайна после нормализации
// Seq - позиция события в порядке выдачи источником, используется при равных временах
type TimelineEvent struct {
	Type     EventType `json:"type"`
	At       time.Time `json:"at"`
	Reviewer string    `json:"reviewer,omitempty"`
	Seq      int       `json:"seq"`
}

// сырое событие таймлайна в форме, близкой к ответу хостинга
// поля Submitter/SubmittedAt заполняются только для отправленных ревью
type RawEvent struct {
	Kind           string
	CreatedAt      time.Time
	Actor          string
	Reviewer       string
	ReviewerIsBot  bool
	RequestedTeam  string
	Submitter      string
	SubmitterIsBot bool
	SubmittedAt    *time.Time
}

// неизменяемая пара из PR и его упорядоченного списка событий
type PRTimeline struct {
	PR     PullRequest
	events []TimelineEvent
}

// создает PRTimeline, копируя список событий
// принимает: PR и уже отсортированный список событий
// возвращает: значение PRTimeline, не разделяющее память с входным слайсом
func NewPRTimeline(pr PullRequest, events []TimelineEvent) PRTimeline {
	copied := make([]TimelineEvent, len(events))
	copy(copied, events)
	return PRTimeline{PR: pr, events: copied}
}

// возвращает копию списка событий
func (t PRTimeline) Events() []TimelineEvent {
	out := make([]TimelineEvent, len(t.events))
	copy(out, t.events)
	return out
}

// возвращает количество событий без копирования
func (t PRTimeline) Len() int {
	return len(t.events)
}

// возвращает событие по индексу
func (t PRTimeline) At(i int) TimelineEvent {
	return t.events[i]
}

// интервал ответа ревьювера на запрос ревью
type ResponseInterval struct {
	Reviewer        string  `json:"reviewer"`
	Repository      string  `json:"repository"`
	PRNumber        int     `json:"pr_number"`
	Hours           float64 `json:"hours"`
	ResolvedByMerge bool    `json:"resolved_by_merge"`
}

// комментарий ревьювера к коду PR
type ReviewComment struct {
	ID        int64     `json:"id"`
	PRID      int64     `json:"pr_id"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}
