package model

import "time"

// ApplicationStatus tracks an application through review.
//
// The usual path is submitted → under_review → interviewed → accepted|rejected,
// but the review UI may jump straight to a terminal state. Storage accepts any
// value; service.ApplicationService checks membership in this set.
type ApplicationStatus string

const (
	StatusSubmitted   ApplicationStatus = "submitted"
	StatusUnderReview ApplicationStatus = "under_review"
	StatusInterviewed ApplicationStatus = "interviewed"
	StatusAccepted    ApplicationStatus = "accepted"
	StatusRejected    ApplicationStatus = "rejected"
)

func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusSubmitted, StatusUnderReview, StatusInterviewed, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// Experience is the applicant's self-reported years of experience.
type Experience string

const (
	ExperienceLessThan1  Experience = "less_than_1"
	Experience1To3       Experience = "1_to_3"
	Experience3To5       Experience = "3_to_5"
	Experience5To10      Experience = "5_to_10"
	ExperienceMoreThan10 Experience = "more_than_10"
)

func (e Experience) Valid() bool {
	switch e {
	case ExperienceLessThan1, Experience1To3, Experience3To5, Experience5To10, ExperienceMoreThan10:
		return true
	}
	return false
}

// Education is the applicant's highest completed level.
type Education string

const (
	EducationHighSchool Education = "high_school"
	EducationAssociate  Education = "associate"
	EducationBachelor   Education = "bachelor"
	EducationMaster     Education = "master"
	EducationDoctorate  Education = "doctorate"
)

func (e Education) Valid() bool {
	switch e {
	case EducationHighSchool, EducationAssociate, EducationBachelor, EducationMaster, EducationDoctorate:
		return true
	}
	return false
}

// Availability is the set of periods an applicant can work.
type Availability struct {
	Holiday   bool `json:"holiday"`
	Weekday   bool `json:"weekday"`
	Weekend   bool `json:"weekend"`
	Morning   bool `json:"morning"`
	Afternoon bool `json:"afternoon"`
	Night     bool `json:"night"`
}

// Application is one applicant's submission against one Job.
// ReferenceID is the tracking code shown to the applicant (SEV-YYYY-XXXXX).
type Application struct {
	ID           int64             `json:"id"`
	JobID        int64             `json:"jobId"`
	ReferenceID  string            `json:"referenceId"`
	FirstName    string            `json:"firstName"`
	LastName     string            `json:"lastName"`
	Email        string            `json:"email"`
	Phone        string            `json:"phone"`
	Address      *string           `json:"address,omitempty"`
	City         *string           `json:"city,omitempty"`
	Zip          *string           `json:"zip,omitempty"`
	ResumeURL    *string           `json:"resumeUrl,omitempty"`
	Experience   *Experience       `json:"experience,omitempty"`
	Education    *Education        `json:"education,omitempty"`
	CoverLetter  *string           `json:"coverLetter,omitempty"`
	Availability *Availability     `json:"availability,omitempty"`
	Shifts       []string          `json:"shifts"`
	StartDate    *time.Time        `json:"startDate,omitempty"`
	Status       ApplicationStatus `json:"status"`
	SubmittedAt  time.Time         `json:"submittedAt"`
}

// NormalizeStatus fills in the default status for records stored without one.
func (a *Application) NormalizeStatus() {
	if a.Status == "" {
		a.Status = StatusSubmitted
	}
}

// ApplicationPatch is a partial update. Nil fields are left untouched.
// ID, JobID, ReferenceID and SubmittedAt cannot be patched.
type ApplicationPatch struct {
	FirstName    *string            `json:"firstName,omitempty"`
	LastName     *string            `json:"lastName,omitempty"`
	Email        *string            `json:"email,omitempty"`
	Phone        *string            `json:"phone,omitempty"`
	Address      *string            `json:"address,omitempty"`
	City         *string            `json:"city,omitempty"`
	Zip          *string            `json:"zip,omitempty"`
	ResumeURL    *string            `json:"resumeUrl,omitempty"`
	Experience   *Experience        `json:"experience,omitempty"`
	Education    *Education         `json:"education,omitempty"`
	CoverLetter  *string            `json:"coverLetter,omitempty"`
	Availability *Availability      `json:"availability,omitempty"`
	Shifts       *[]string          `json:"shifts,omitempty"`
	StartDate    *time.Time         `json:"startDate,omitempty"`
	Status       *ApplicationStatus `json:"status,omitempty"`
}

func (p ApplicationPatch) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Email == nil &&
		p.Phone == nil && p.Address == nil && p.City == nil && p.Zip == nil &&
		p.ResumeURL == nil && p.Experience == nil && p.Education == nil &&
		p.CoverLetter == nil && p.Availability == nil && p.Shifts == nil &&
		p.StartDate == nil && p.Status == nil
}

// Apply merges the patch onto a in place.
func (p ApplicationPatch) Apply(a *Application) {
	if p.FirstName != nil {
		a.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		a.LastName = *p.LastName
	}
	if p.Email != nil {
		a.Email = *p.Email
	}
	if p.Phone != nil {
		a.Phone = *p.Phone
	}
	if p.Address != nil {
		a.Address = p.Address
	}
	if p.City != nil {
		a.City = p.City
	}
	if p.Zip != nil {
		a.Zip = p.Zip
	}
	if p.ResumeURL != nil {
		a.ResumeURL = p.ResumeURL
	}
	if p.Experience != nil {
		a.Experience = p.Experience
	}
	if p.Education != nil {
		a.Education = p.Education
	}
	if p.CoverLetter != nil {
		a.CoverLetter = p.CoverLetter
	}
	if p.Availability != nil {
		av := *p.Availability
		a.Availability = &av
	}
	if p.Shifts != nil {
		a.Shifts = NormalizeStrings(*p.Shifts)
	}
	if p.StartDate != nil {
		a.StartDate = p.StartDate
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
}
