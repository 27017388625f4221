package portal

import "context"

// Collaborator interfaces over the portal's transactional services. The
// chatbot core consumes these read-side contracts only; all writes stay in
// the surrounding CRUD application.

type UserDirectory interface {
	Count(ctx context.Context, role string) (int, error)
	FindOne(ctx context.Context, query string) (*User, error)
}

type CourseCatalog interface {
	FindAll(ctx context.Context, page, limit int, search string) ([]Course, error)
	FindOne(ctx context.Context, code string) (*Course, error)
}

type EnrollmentService interface {
	Periods(ctx context.Context, status EnrollmentStatus, sort SortOrder) ([]EnrollmentPeriod, error)
	ActivePeriod(ctx context.Context) (*EnrollmentPeriod, error)
	MyCourses(ctx context.Context, userID string) ([]EnrolledCourse, error)
}

type LMSService interface {
	Modules(ctx context.Context, userID, courseCode string) ([]Module, error)
	ModuleContents(ctx context.Context, userID, moduleID string, contentType ContentType, progress ProgressStatus) ([]ModuleContent, error)
}

type BillingService interface {
	Invoices(ctx context.Context, userID string, status BillStatus, scheme PaymentScheme, sort SortOrder) ([]Invoice, error)
	InvoiceDetail(ctx context.Context, userID, invoiceID string) (*InvoiceDetail, error)
}

// KnowledgeSearcher is the semantic search collaborator boundary.
type KnowledgeSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]SearchHit, error)
}

// SearchHit is one ranked snippet from the knowledge searcher.
type SearchHit struct {
	Source  string  `json:"source"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Services bundles every collaborator the tool table binds against.
type Services struct {
	Users      UserDirectory
	Courses    CourseCatalog
	Enrollment EnrollmentService
	LMS        LMSService
	Billing    BillingService
	Knowledge  KnowledgeSearcher
}
