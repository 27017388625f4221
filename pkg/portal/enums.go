package portal

import "github.com/YKZSolutions/MMDC-Student-Portal-sub003/pkg/capability"

// Domain enums mirrored from the portal schema. The chatbot core never
// hardcodes these value lists; it reads them through the EnumSource so the
// capability schemas track whatever the schema currently declares.

type EnrollmentStatus string

const (
	EnrollmentDraft    EnrollmentStatus = "draft"
	EnrollmentUpcoming EnrollmentStatus = "upcoming"
	EnrollmentActive   EnrollmentStatus = "active"
	EnrollmentExtended EnrollmentStatus = "extended"
	EnrollmentClosed   EnrollmentStatus = "closed"
)

type BillStatus string

const (
	BillUnpaid  BillStatus = "unpaid"
	BillPartial BillStatus = "partially_paid"
	BillPaid    BillStatus = "paid"
	BillOverdue BillStatus = "overdue"
)

type PaymentScheme string

const (
	SchemeFull         PaymentScheme = "full"
	SchemeInstallment1 PaymentScheme = "installment1"
	SchemeInstallment2 PaymentScheme = "installment2"
)

type ContentType string

const (
	ContentLesson     ContentType = "lesson"
	ContentAssignment ContentType = "assignment"
	ContentQuiz       ContentType = "quiz"
	ContentDiscussion ContentType = "discussion"
	ContentVideo      ContentType = "video"
	ContentURL        ContentType = "url"
	ContentFile       ContentType = "file"
)

type ProgressStatus string

const (
	ProgressNotStarted ProgressStatus = "not_started"
	ProgressInProgress ProgressStatus = "in_progress"
	ProgressCompleted  ProgressStatus = "completed"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// StaticEnumSource exposes the compiled-in enum values to the capability
// registry. A deployment backed by a live schema can substitute its own
// EnumSource without touching the registry.
type StaticEnumSource struct{}

func (StaticEnumSource) Values(enum string) []string {
	switch enum {
	case capability.EnumUserRole:
		return []string{"admin", "mentor", "student"}
	case capability.EnumEnrollmentStatus:
		return []string{
			string(EnrollmentDraft), string(EnrollmentUpcoming), string(EnrollmentActive),
			string(EnrollmentExtended), string(EnrollmentClosed),
		}
	case capability.EnumBillStatus:
		return []string{
			string(BillUnpaid), string(BillPartial), string(BillPaid), string(BillOverdue),
		}
	case capability.EnumPaymentScheme:
		return []string{
			string(SchemeFull), string(SchemeInstallment1), string(SchemeInstallment2),
		}
	case capability.EnumContentType:
		return []string{
			string(ContentLesson), string(ContentAssignment), string(ContentQuiz),
			string(ContentDiscussion), string(ContentVideo), string(ContentURL), string(ContentFile),
		}
	case capability.EnumProgressStatus:
		return []string{
			string(ProgressNotStarted), string(ProgressInProgress), string(ProgressCompleted),
		}
	case capability.EnumSortOrder:
		return []string{string(SortAsc), string(SortDesc)}
	default:
		return nil
	}
}

var _ capability.EnumSource = StaticEnumSource{}
