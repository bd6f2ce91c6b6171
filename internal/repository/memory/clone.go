package memory

import (
	"maps"
	"slices"
	"time"

	"github.com/sakif/jobboard/internal/model"
)

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return slices.Clone(s)
}

func cloneUser(u *model.User) *model.User {
	c := *u
	return &c
}

func cloneJob(j *model.Job) *model.Job {
	c := *j
	c.Department = clonePtr(j.Department)
	c.PayRange = clonePtr(j.PayRange)
	c.Benefits = clonePtr(j.Benefits)
	c.ClosingDate = clonePtr(j.ClosingDate)
	c.Tags = cloneStrings(j.Tags)
	return &c
}

func cloneApplication(a *model.Application) *model.Application {
	c := *a
	c.Address = clonePtr(a.Address)
	c.City = clonePtr(a.City)
	c.Zip = clonePtr(a.Zip)
	c.ResumeURL = clonePtr(a.ResumeURL)
	c.Experience = clonePtr(a.Experience)
	c.Education = clonePtr(a.Education)
	c.CoverLetter = clonePtr(a.CoverLetter)
	c.Availability = clonePtr(a.Availability)
	c.StartDate = clonePtr(a.StartDate)
	c.Shifts = cloneStrings(a.Shifts)
	c.NormalizeStatus()
	return &c
}

func cloneActivity(a *model.Activity) *model.Activity {
	c := *a
	if a.Details != nil {
		c.Details = maps.Clone(a.Details)
	} else {
		c.Details = map[string]any{}
	}
	return &c
}

func jobKey(j model.Job) (time.Time, int64)                 { return j.CreatedAt, j.ID }
func applicationKey(a model.Application) (time.Time, int64) { return a.SubmittedAt, a.ID }
func activityKey(a model.Activity) (time.Time, int64)       { return a.Timestamp, a.ID }
