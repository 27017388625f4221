package portal

import "time"

// Read-model records returned by the portal's data services. The chatbot core
// never interprets their structure; it only serializes them at the tool
// boundary.

type User struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

type Course struct {
	Code        string `json:"code"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Units       int    `json:"units"`
}

type EnrollmentPeriod struct {
	ID         string           `json:"id"`
	Term       string           `json:"term"`
	SchoolYear string           `json:"school_year"`
	Status     EnrollmentStatus `json:"status"`
	StartsAt   time.Time        `json:"starts_at"`
	EndsAt     time.Time        `json:"ends_at"`
}

type EnrolledCourse struct {
	CourseCode string `json:"course_code"`
	Title      string `json:"title"`
	Section    string `json:"section"`
	Mentor     string `json:"mentor"`
	Status     string `json:"status"`
}

type Module struct {
	ID         string `json:"id"`
	CourseCode string `json:"course_code"`
	Title      string `json:"title"`
	Position   int    `json:"position"`
}

type ModuleContent struct {
	ID       string         `json:"id"`
	ModuleID string         `json:"module_id"`
	Title    string         `json:"title"`
	Type     ContentType    `json:"type"`
	Progress ProgressStatus `json:"progress"`
}

type Invoice struct {
	ID        string        `json:"id"`
	InvoiceNo int           `json:"invoice_no"`
	Status    BillStatus    `json:"status"`
	Scheme    PaymentScheme `json:"scheme"`
	Amount    float64       `json:"amount"`
	Balance   float64       `json:"balance"`
	DueAt     time.Time     `json:"due_at"`
}

type InvoiceDetail struct {
	Invoice
	Items    []InvoiceItem `json:"items"`
	Payments []Payment     `json:"payments"`
}

type InvoiceItem struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

type Payment struct {
	ID     string    `json:"id"`
	Amount float64   `json:"amount"`
	PaidAt time.Time `json:"paid_at"`
	Method string    `json:"method"`
}
