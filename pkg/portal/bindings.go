package portal

import (
	"context"
	"errors"
	"strings"

	"github.com/YKZSolutions/MMDC-Student-Portal-sub003/pkg/capability"
	"github.com/YKZSolutions/MMDC-Student-Portal-sub003/pkg/dispatch"
)

// Tool names exposed to the model. These strings are also what the sanitizer
// scrubs from final answers.
const (
	ToolUsersCount           = "users_count"
	ToolUsersFindOne         = "users_find_one"
	ToolCoursesFindAll       = "courses_find_all"
	ToolCoursesFindOne       = "courses_find_one"
	ToolEnrollmentPeriods    = "enrollment_periods"
	ToolActivePeriod         = "enrollment_active_period"
	ToolMyCourses            = "enrollment_my_courses"
	ToolLMSModules           = "lms_modules"
	ToolLMSModuleContents    = "lms_module_contents"
	ToolBillingInvoices      = "billing_invoices"
	ToolBillingInvoiceDetail = "billing_invoice_detail"
	ToolKnowledgeSearch      = "knowledge_search"
)

type requesterKey struct{}

// WithRequester records the acting user's id on the context so tool handlers
// can scope their lookups. The orchestration core never reads it.
func WithRequester(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, requesterKey{}, userID)
}

// RequesterFrom extracts the acting user's id set by WithRequester.
func RequesterFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requesterKey{}).(string)
	return id, ok && id != ""
}

var errNoRequester = errors.New("acting user is not identified for this request")

// Toolset couples the capability bindings with the handler table built over
// the portal's collaborator services. Both sides are assembled once at
// startup and are read-only afterwards.
type Toolset struct {
	Bindings []capability.Binding
	Handlers map[string]dispatch.Handler
}

// NewToolset builds the complete tool table. Enum constraints are re-derived
// from the EnumSource so descriptor schemas cannot drift from the domain
// definitions.
func NewToolset(services Services, enums capability.EnumSource) *Toolset {
	all := []capability.Role{capability.RoleAdmin, capability.RoleMentor, capability.RoleStudent}
	adminOnly := []capability.Role{capability.RoleAdmin}
	adminStudent := []capability.Role{capability.RoleAdmin, capability.RoleStudent}

	ts := &Toolset{Handlers: make(map[string]dispatch.Handler)}
	add := func(desc capability.Descriptor, roles []capability.Role, handler dispatch.Handler) {
		ts.Bindings = append(ts.Bindings, capability.Binding{Descriptor: desc, Roles: roles})
		ts.Handlers[desc.Name] = handler
	}

	add(capability.Descriptor{
		Name:        ToolUsersCount,
		Description: "Count registered portal users, optionally narrowed to one role.",
		Parameters: capability.ObjectSchema(map[string]*capability.Schema{
			"role": capability.EnumSchema("Only count users holding this role.", enums.Values(capability.EnumUserRole)),
		}),
	}, adminOnly, func(ctx context.Context, args map[string]any) (any, error) {
		count, err := services.Users.Count(ctx, stringArg(args, "role"))
		if err != nil {
			return nil, err
		}
		return map[string]any{"count": count}, nil
	})

	add(capability.Descriptor{
		Name:        ToolUsersFindOne,
		Description: "Find a single portal user by name, email, or id.",
		Parameters: capability.ObjectSchema(map[string]*capability.Schema{
			"query": capability.StringSchema("Name, email address, or user id to look up."),
		}, "query"),
	}, adminOnly, func(ctx context.Context, args map[string]any) (any, error) {
		return services.Users.FindOne(ctx, stringArg(args, "query"))
	})

	add(capability.Descriptor{
		Name:        ToolCoursesFindAll,
		Description: "List courses from the catalog with optional pagination and a search filter.",
		Parameters: capability.ObjectSchema(map[string]*capability.Schema{
			"page":   capability.IntSchema("Page number, starting at 1.", 1),
			"limit":  capability.IntSchema("Courses per page.", 10),
			"search": capability.StringSchema("Match against course code or title."),
		}),
	}, all, func(ctx context.Context, args map[string]any) (any, error) {
		return services.Courses.FindAll(ctx, intArg(args, "page", 1), intArg(args, "limit", 10), stringArg(args, "search"))
	})

	add(capability.Descriptor{
		Name:        ToolCoursesFindOne,
		Description: "Fetch one course's full catalog entry by its course code.",
		Parameters: capability.ObjectSchema(map[string]*capability.Schema{
			"course_code": capability.StringSchema("The course code, e.g. MO-IT101."),
		}, "course_code"),
	}, all, func(ctx context.Context, args map[string]any) (any, error) {
		return services.Courses.FindOne(ctx, stringArg(args, "course_code"))
	})

	add(capability.Descriptor{
		Name:        ToolEnrollmentPeriods,
		Description: "List enrollment periods filtered by status, sorted by start date.",
		Parameters: capability.ObjectSchema(map[string]*capability.Schema{
			"status": capability.EnumSchema("Only periods in this state.", enums.Values(capability.EnumEnrollmentStatus)),
			"sort":   capability.EnumSchema("Sort direction by start date.", enums.Values(capability.EnumSortOrder)),
		}),
	}, adminOnly, func(ctx context.Context, args map[string]any) (any, error) {
		return services.Enrollment.Periods(ctx, EnrollmentStatus(stringArg(args, "status")), SortOrder(stringArg(args, "sort")))
	})

	add(capability.Descriptor{
		Name:        ToolActivePeriod,
		Description: "Fetch the currently active enrollment period, if any.",
		Parameters:  capability.ObjectSchema(nil),
	}, all, func(ctx context.Context, args map[string]any) (any, error) {
		return services.Enrollment.ActivePeriod(ctx)
	})

	add(capability.Descriptor{
		Name:        ToolMyCourses,
		Description: "List the courses the signed-in user is enrolled in for the current term.",
		Parameters:  capability.ObjectSchema(nil),
	}, adminStudent, func(ctx context.Context, args map[string]any) (any, error) {
		userID, ok := RequesterFrom(ctx)
		if !ok {
			return nil, errNoRequester
		}
		return services.Enrollment.MyCourses(ctx, userID)
	})

	add(capability.Descriptor{
		Name:        ToolLMSModules,
		Description: "List learning modules visible to the signed-in user, optionally for one course.",
		Parameters: capability.ObjectSchema(map[string]*capability.Schema{
			"course_code": capability.StringSchema("Limit to this course's modules."),
		}),
	}, all, func(ctx context.Context, args map[string]any) (any, error) {
		userID, ok := RequesterFrom(ctx)
		if !ok {
			return nil, errNoRequester
		}
		return services.LMS.Modules(ctx, userID, stringArg(args, "course_code"))
	})

	add(capability.Descriptor{
		Name:        ToolLMSModuleContents,
		Description: "List the contents of one learning module with the signed-in user's progress.",
		Parameters: capability.ObjectSchema(map[string]*capability.Schema{
			"module_id":    capability.StringSchema("The module to list contents for."),
			"content_type": capability.EnumSchema("Only contents of this type.", enums.Values(capability.EnumContentType)),
			"progress":     capability.EnumSchema("Only contents in this progress state.", enums.Values(capability.EnumProgressStatus)),
		}, "module_id"),
	}, all, func(ctx context.Context, args map[string]any) (any, error) {
		userID, ok := RequesterFrom(ctx)
		if !ok {
			return nil, errNoRequester
		}
		return services.LMS.ModuleContents(ctx, userID, stringArg(args, "module_id"),
			ContentType(stringArg(args, "content_type")), ProgressStatus(stringArg(args, "progress")))
	})

	add(capability.Descriptor{
		Name:        ToolBillingInvoices,
		Description: "List the signed-in user's tuition invoices with optional status and scheme filters.",
		Parameters: capability.ObjectSchema(map[string]*capability.Schema{
			"status": capability.EnumSchema("Only invoices in this state.", enums.Values(capability.EnumBillStatus)),
			"scheme": capability.EnumSchema("Only invoices under this payment scheme.", enums.Values(capability.EnumPaymentScheme)),
			"sort":   capability.EnumSchema("Sort direction by due date.", enums.Values(capability.EnumSortOrder)),
		}),
	}, adminStudent, func(ctx context.Context, args map[string]any) (any, error) {
		userID, ok := RequesterFrom(ctx)
		if !ok {
			return nil, errNoRequester
		}
		return services.Billing.Invoices(ctx, userID, BillStatus(stringArg(args, "status")),
			PaymentScheme(stringArg(args, "scheme")), SortOrder(stringArg(args, "sort")))
	})

	add(capability.Descriptor{
		Name:        ToolBillingInvoiceDetail,
		Description: "Fetch one invoice with its line items and recorded payments.",
		Parameters: capability.ObjectSchema(map[string]*capability.Schema{
			"invoice_id": capability.StringSchema("The invoice to fetch."),
		}, "invoice_id"),
	}, adminStudent, func(ctx context.Context, args map[string]any) (any, error) {
		userID, ok := RequesterFrom(ctx)
		if !ok {
			return nil, errNoRequester
		}
		return services.Billing.InvoiceDetail(ctx, userID, stringArg(args, "invoice_id"))
	})

	add(capability.Descriptor{
		Name:        ToolKnowledgeSearch,
		Description: "Search the school's indexed handbook and course material for general questions.",
		Parameters: capability.ObjectSchema(map[string]*capability.Schema{
			"query": capability.StringSchema("What to search for."),
			"limit": capability.IntSchema("Maximum snippets to return.", 5),
		}, "query"),
	}, all, func(ctx context.Context, args map[string]any) (any, error) {
		return services.Knowledge.Search(ctx, stringArg(args, "query"), intArg(args, "limit", 5))
	})

	return ts
}

func stringArg(args map[string]any, key string) string {
	if args == nil {
		return ""
	}
	value, _ := args[key].(string)
	return strings.TrimSpace(value)
}

func intArg(args map[string]any, key string, def int) int {
	if args == nil {
		return def
	}
	switch v := args[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return def
	}
}
