package entity

import (
	"errors"
	"time"
)

type ReportStatus string

const (
	ReportStatusPending   ReportStatus = "pending"
	ReportStatusTaken     ReportStatus = "taken"
	ReportStatusCompleted ReportStatus = "completed"
)

func (s ReportStatus) Valid() bool {
	switch s {
	case ReportStatusPending, ReportStatusTaken, ReportStatusCompleted:
		return true
	}
	return false
}

var (
	ErrInvalidTransition  = errors.New("report status does not allow this transition")
	ErrNotAssignee        = errors.New("report is not assigned to this user")
	ErrNoResolutionImages = errors.New("at least one resolved image is required")
	ErrDueDateNotInFuture = errors.New("due date must be in the future")
	ErrAlreadyUpvoted     = errors.New("already upvoted")
	ErrUpvoteNotFound     = errors.New("you haven't upvoted this report")
)

type GeoPoint struct {
	Lat float64 `json:"lat" firestore:"lat" bson:"lat"`
	Lng float64 `json:"lng" firestore:"lng" bson:"lng"`
}

type Comment struct {
	UserID    string    `json:"user" firestore:"user" bson:"user"`
	Text      string    `json:"text" firestore:"text" bson:"text"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt" bson:"createdAt"`
}

type Report struct {
	ID           string       `json:"id" firestore:"id" bson:"_id"`
	Title        string       `json:"title" firestore:"title" bson:"title"`
	Description  string       `json:"description" firestore:"description" bson:"description"`
	Photos       []string     `json:"photos" firestore:"photos" bson:"photos"`
	AutoLocation *GeoPoint    `json:"autoLocation,omitempty" firestore:"autoLocation" bson:"autoLocation,omitempty"`
	Landmark     string       `json:"landmark" firestore:"landmark" bson:"landmark"`
	City         string       `json:"city" firestore:"city" bson:"city"`
	Status       ReportStatus `json:"status" firestore:"status" bson:"status"`
	PostedBy     string       `json:"postedBy" firestore:"postedBy" bson:"postedBy"`

	// Assignment. All three are nil or all three are set.
	TakenBy *string    `json:"takenBy" firestore:"takenBy" bson:"takenBy"`
	TakenOn *time.Time `json:"takenOn" firestore:"takenOn" bson:"takenOn"`
	DueDate *time.Time `json:"dueDate" firestore:"dueDate" bson:"dueDate"`

	ResolvedImages        []string   `json:"resolvedImages" firestore:"resolvedImages" bson:"resolvedImages"`
	ResolutionDescription string     `json:"resolutionDescription,omitempty" firestore:"resolutionDescription" bson:"resolutionDescription,omitempty"`
	ResolvedOn            *time.Time `json:"resolvedOn" firestore:"resolvedOn" bson:"resolvedOn"`

	IncompletedBy []string  `json:"incompletedBy" firestore:"incompletedBy" bson:"incompletedBy"`
	Upvotes       []string  `json:"upvotes" firestore:"upvotes" bson:"upvotes"`
	Comments      []Comment `json:"comments" firestore:"comments" bson:"comments"`
	CommenterIDs  []string  `json:"-" firestore:"commenterIds" bson:"commenterIds"`

	CreatedAt time.Time `json:"createdAt" firestore:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt" bson:"updatedAt"`

	// Revision is bumped by stores that lack transactions and use it for
	// optimistic concurrency.
	Revision int64 `json:"-" firestore:"-" bson:"revision"`
}

// AssignedTo returns the NGO currently holding the report, or "".
func (r *Report) AssignedTo() string {
	if r.TakenBy == nil {
		return ""
	}
	return *r.TakenBy
}

// Claim moves a pending report to taken.
func (r *Report) Claim(ngoID string, now, dueDate time.Time) error {
	if !dueDate.After(now) {
		return ErrDueDateNotInFuture
	}
	if r.Status != ReportStatusPending {
		return ErrInvalidTransition
	}

	takenBy := ngoID
	takenOn := now
	due := dueDate
	r.Status = ReportStatusTaken
	r.TakenBy = &takenBy
	r.TakenOn = &takenOn
	r.DueDate = &due
	r.UpdatedAt = now
	return nil
}

// Complete moves a taken report to completed. Only the assignee may complete.
func (r *Report) Complete(ngoID string, images []string, description string, now time.Time) error {
	if len(images) == 0 {
		return ErrNoResolutionImages
	}
	if r.AssignedTo() != ngoID {
		return ErrNotAssignee
	}
	if r.Status != ReportStatusTaken {
		return ErrInvalidTransition
	}

	resolvedOn := now
	r.Status = ReportStatusCompleted
	r.ResolvedImages = append([]string(nil), images...)
	if description != "" {
		r.ResolutionDescription = description
	}
	r.ResolvedOn = &resolvedOn
	r.UpdatedAt = now
	return nil
}

// Revert returns an overdue taken report to pending and records the NGO that
// missed the deadline. It returns the previous assignee.
func (r *Report) Revert(now time.Time) (string, error) {
	if r.Status != ReportStatusTaken || r.TakenBy == nil {
		return "", ErrInvalidTransition
	}

	previous := *r.TakenBy
	r.Status = ReportStatusPending
	r.IncompletedBy = append(r.IncompletedBy, previous)
	r.TakenBy = nil
	r.TakenOn = nil
	r.DueDate = nil
	r.UpdatedAt = now
	return previous, nil
}

// IsOverdue reports whether the scanner should revert r at instant now.
func (r *Report) IsOverdue(now time.Time) bool {
	return r.Status == ReportStatusTaken &&
		r.DueDate != nil &&
		r.DueDate.Before(now) &&
		r.ResolvedOn == nil
}

// AssignmentConsistent checks that takenBy, takenOn and dueDate move together
// and that resolved images only exist on completed reports.
func (r *Report) AssignmentConsistent() bool {
	set := 0
	if r.TakenBy != nil {
		set++
	}
	if r.TakenOn != nil {
		set++
	}
	if r.DueDate != nil {
		set++
	}
	if set != 0 && set != 3 {
		return false
	}
	if len(r.ResolvedImages) > 0 && r.Status != ReportStatusCompleted {
		return false
	}
	return true
}

func (r *Report) HasUpvoted(userID string) bool {
	for _, id := range r.Upvotes {
		if id == userID {
			return true
		}
	}
	return false
}

func (r *Report) AddUpvote(userID string) error {
	if r.HasUpvoted(userID) {
		return ErrAlreadyUpvoted
	}
	r.Upvotes = append(r.Upvotes, userID)
	return nil
}

func (r *Report) RemoveUpvote(userID string) error {
	for i, id := range r.Upvotes {
		if id == userID {
			r.Upvotes = append(r.Upvotes[:i], r.Upvotes[i+1:]...)
			return nil
		}
	}
	return ErrUpvoteNotFound
}

func (r *Report) AddComment(userID, text string, now time.Time) Comment {
	comment := Comment{UserID: userID, Text: text, CreatedAt: now}
	r.Comments = append(r.Comments, comment)
	for _, id := range r.CommenterIDs {
		if id == userID {
			return comment
		}
	}
	r.CommenterIDs = append(r.CommenterIDs, userID)
	return comment
}

// Clone returns a deep copy so callers can mutate without aliasing stored state.
func (r *Report) Clone() *Report {
	if r == nil {
		return nil
	}
	c := *r
	c.Photos = append([]string(nil), r.Photos...)
	c.ResolvedImages = append([]string(nil), r.ResolvedImages...)
	c.IncompletedBy = append([]string(nil), r.IncompletedBy...)
	c.Upvotes = append([]string(nil), r.Upvotes...)
	c.Comments = append([]Comment(nil), r.Comments...)
	c.CommenterIDs = append([]string(nil), r.CommenterIDs...)
	if r.AutoLocation != nil {
		loc := *r.AutoLocation
		c.AutoLocation = &loc
	}
	if r.TakenBy != nil {
		v := *r.TakenBy
		c.TakenBy = &v
	}
	if r.TakenOn != nil {
		v := *r.TakenOn
		c.TakenOn = &v
	}
	if r.DueDate != nil {
		v := *r.DueDate
		c.DueDate = &v
	}
	if r.ResolvedOn != nil {
		v := *r.ResolvedOn
		c.ResolvedOn = &v
	}
	return &c
}

// ReportDetail is a report with its poster and assignee resolved.
type ReportDetail struct {
	*Report
	Poster   *UserSummary `json:"poster,omitempty"`
	Assignee *UserSummary `json:"assignee,omitempty"`
}
