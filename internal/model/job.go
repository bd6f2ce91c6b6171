package model

import "time"

// JobType is the employment type of a listing.
type JobType string

const (
	JobTypeFullTime  JobType = "full_time"
	JobTypePartTime  JobType = "part_time"
	JobTypeContract  JobType = "contract"
	JobTypeTemporary JobType = "temporary"
)

// Valid reports whether t is one of the known job types.
func (t JobType) Valid() bool {
	switch t {
	case JobTypeFullTime, JobTypePartTime, JobTypeContract, JobTypeTemporary:
		return true
	}
	return false
}

// JobStatus is the lifecycle state of a listing.
type JobStatus string

const (
	JobStatusActive   JobStatus = "active"
	JobStatusFilled   JobStatus = "filled"
	JobStatusClosed   JobStatus = "closed"
	JobStatusArchived JobStatus = "archived"
)

func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusActive, JobStatusFilled, JobStatusClosed, JobStatusArchived:
		return true
	}
	return false
}

// Job is a job listing owned by exactly one User.
//
// Optional text fields are pointers so "not given" and "empty" stay distinct
// through JSON and through the nullable columns of the relational backend.
// Tags is never nil once stored.
type Job struct {
	ID           int64      `json:"id"`
	UserID       int64      `json:"userId"`
	Title        string     `json:"title"`
	Location     string     `json:"location"`
	Description  string     `json:"description"`
	Requirements string     `json:"requirements"`
	Type         JobType    `json:"type"`
	Department   *string    `json:"department,omitempty"`
	PayRange     *string    `json:"payRange,omitempty"`
	Benefits     *string    `json:"benefits,omitempty"`
	Status       JobStatus  `json:"status"`
	CreatedAt    time.Time  `json:"createdAt"`
	ClosingDate  *time.Time `json:"closingDate,omitempty"`
	Tags         []string   `json:"tags"`
}

// JobPatch is a partial update. Nil fields are left untouched.
// ID, UserID and CreatedAt cannot be patched.
type JobPatch struct {
	Title        *string    `json:"title,omitempty"`
	Location     *string    `json:"location,omitempty"`
	Description  *string    `json:"description,omitempty"`
	Requirements *string    `json:"requirements,omitempty"`
	Type         *JobType   `json:"type,omitempty"`
	Department   *string    `json:"department,omitempty"`
	PayRange     *string    `json:"payRange,omitempty"`
	Benefits     *string    `json:"benefits,omitempty"`
	Status       *JobStatus `json:"status,omitempty"`
	ClosingDate  *time.Time `json:"closingDate,omitempty"`
	Tags         *[]string  `json:"tags,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p JobPatch) Empty() bool {
	return p.Title == nil && p.Location == nil && p.Description == nil &&
		p.Requirements == nil && p.Type == nil && p.Department == nil &&
		p.PayRange == nil && p.Benefits == nil && p.Status == nil &&
		p.ClosingDate == nil && p.Tags == nil
}

// Apply merges the patch onto j in place.
func (p JobPatch) Apply(j *Job) {
	if p.Title != nil {
		j.Title = *p.Title
	}
	if p.Location != nil {
		j.Location = *p.Location
	}
	if p.Description != nil {
		j.Description = *p.Description
	}
	if p.Requirements != nil {
		j.Requirements = *p.Requirements
	}
	if p.Type != nil {
		j.Type = *p.Type
	}
	if p.Department != nil {
		j.Department = p.Department
	}
	if p.PayRange != nil {
		j.PayRange = p.PayRange
	}
	if p.Benefits != nil {
		j.Benefits = p.Benefits
	}
	if p.Status != nil {
		j.Status = *p.Status
	}
	if p.ClosingDate != nil {
		j.ClosingDate = p.ClosingDate
	}
	if p.Tags != nil {
		j.Tags = NormalizeStrings(*p.Tags)
	}
}

// NormalizeStrings returns s, or an empty non-nil slice when s is nil.
func NormalizeStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
