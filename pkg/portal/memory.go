package portal

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Fixtures is the in-memory dataset the demo binary and tests run against. A
// real deployment wires the portal's data services instead of these.
type Fixtures struct {
	Users       []User
	Courses     []Course
	Periods     []EnrollmentPeriod
	Enrollments map[string][]EnrolledCourse
	Modules     map[string][]Module // keyed by course code
	Contents    map[string][]ModuleContent
	Invoices    map[string][]InvoiceDetail
	Hits        []SearchHit
}

// Services exposes the fixture dataset through the collaborator interfaces.
func (f *Fixtures) Services() Services {
	return Services{
		Users:      &fixtureUsers{f},
		Courses:    &fixtureCourses{f},
		Enrollment: &fixtureEnrollment{f},
		LMS:        &fixtureLMS{f},
		Billing:    &fixtureBilling{f},
		Knowledge:  &fixtureKnowledge{f},
	}
}

type fixtureUsers struct{ data *Fixtures }

func (s *fixtureUsers) Count(_ context.Context, role string) (int, error) {
	if role == "" {
		return len(s.data.Users), nil
	}
	count := 0
	for _, u := range s.data.Users {
		if u.Role == role {
			count++
		}
	}
	return count, nil
}

func (s *fixtureUsers) FindOne(_ context.Context, query string) (*User, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, fmt.Errorf("user lookup needs a name, email, or id")
	}
	for i := range s.data.Users {
		u := s.data.Users[i]
		haystack := strings.ToLower(strings.Join([]string{u.ID, u.FirstName, u.LastName, u.Email}, " "))
		if strings.Contains(haystack, query) {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("no user matches %q", query)
}

type fixtureCourses struct{ data *Fixtures }

func (s *fixtureCourses) FindAll(_ context.Context, page, limit int, search string) ([]Course, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	search = strings.ToLower(strings.TrimSpace(search))
	var matched []Course
	for _, c := range s.data.Courses {
		if search == "" ||
			strings.Contains(strings.ToLower(c.Code), search) ||
			strings.Contains(strings.ToLower(c.Title), search) {
			matched = append(matched, c)
		}
	}
	start := (page - 1) * limit
	if start >= len(matched) {
		return nil, nil
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], nil
}

func (s *fixtureCourses) FindOne(_ context.Context, code string) (*Course, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for i := range s.data.Courses {
		if strings.ToUpper(s.data.Courses[i].Code) == code {
			return &s.data.Courses[i], nil
		}
	}
	return nil, fmt.Errorf("no course with code %q", code)
}

type fixtureEnrollment struct{ data *Fixtures }

func (s *fixtureEnrollment) Periods(_ context.Context, status EnrollmentStatus, sortOrder SortOrder) ([]EnrollmentPeriod, error) {
	var periods []EnrollmentPeriod
	for _, p := range s.data.Periods {
		if status == "" || p.Status == status {
			periods = append(periods, p)
		}
	}
	sort.Slice(periods, func(i, j int) bool {
		if sortOrder == SortDesc {
			return periods[i].StartsAt.After(periods[j].StartsAt)
		}
		return periods[i].StartsAt.Before(periods[j].StartsAt)
	})
	return periods, nil
}

func (s *fixtureEnrollment) ActivePeriod(_ context.Context) (*EnrollmentPeriod, error) {
	now := time.Now()
	for i := range s.data.Periods {
		p := s.data.Periods[i]
		if p.Status == EnrollmentActive || (p.Status == EnrollmentExtended && p.EndsAt.After(now)) {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("no enrollment period is currently active")
}

func (s *fixtureEnrollment) MyCourses(_ context.Context, userID string) ([]EnrolledCourse, error) {
	return s.data.Enrollments[userID], nil
}

type fixtureLMS struct{ data *Fixtures }

func (s *fixtureLMS) Modules(_ context.Context, _ string, courseCode string) ([]Module, error) {
	courseCode = strings.ToUpper(strings.TrimSpace(courseCode))
	if courseCode != "" {
		return s.data.Modules[courseCode], nil
	}
	var all []Module
	for _, modules := range s.data.Modules {
		all = append(all, modules...)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CourseCode == all[j].CourseCode {
			return all[i].Position < all[j].Position
		}
		return all[i].CourseCode < all[j].CourseCode
	})
	return all, nil
}

func (s *fixtureLMS) ModuleContents(_ context.Context, _ string, moduleID string, contentType ContentType, progress ProgressStatus) ([]ModuleContent, error) {
	contents, ok := s.data.Contents[moduleID]
	if !ok {
		return nil, fmt.Errorf("no module with id %q", moduleID)
	}
	var filtered []ModuleContent
	for _, c := range contents {
		if contentType != "" && c.Type != contentType {
			continue
		}
		if progress != "" && c.Progress != progress {
			continue
		}
		filtered = append(filtered, c)
	}
	return filtered, nil
}

type fixtureBilling struct{ data *Fixtures }

func (s *fixtureBilling) Invoices(_ context.Context, userID string, status BillStatus, scheme PaymentScheme, sortOrder SortOrder) ([]Invoice, error) {
	var invoices []Invoice
	for _, detail := range s.data.Invoices[userID] {
		if status != "" && detail.Status != status {
			continue
		}
		if scheme != "" && detail.Scheme != scheme {
			continue
		}
		invoices = append(invoices, detail.Invoice)
	}
	sort.Slice(invoices, func(i, j int) bool {
		if sortOrder == SortDesc {
			return invoices[i].DueAt.After(invoices[j].DueAt)
		}
		return invoices[i].DueAt.Before(invoices[j].DueAt)
	})
	return invoices, nil
}

func (s *fixtureBilling) InvoiceDetail(_ context.Context, userID, invoiceID string) (*InvoiceDetail, error) {
	for i := range s.data.Invoices[userID] {
		if s.data.Invoices[userID][i].ID == invoiceID {
			return &s.data.Invoices[userID][i], nil
		}
	}
	return nil, fmt.Errorf("no invoice %q for this user", invoiceID)
}

type fixtureKnowledge struct{ data *Fixtures }

func (s *fixtureKnowledge) Search(_ context.Context, query string, limit int) ([]SearchHit, error) {
	if limit <= 0 {
		limit = 5
	}
	query = strings.ToLower(strings.TrimSpace(query))
	var hits []SearchHit
	for _, hit := range s.data.Hits {
		if query == "" || strings.Contains(strings.ToLower(hit.Content), query) {
			hits = append(hits, hit)
		}
		if len(hits) == limit {
			break
		}
	}
	return hits, nil
}
