package portal

import (
	"context"
	"errors"
	"testing"

	"github.com/YKZSolutions/MMDC-Student-Portal-sub003/pkg/capability"
)

func testFixtures() *Fixtures {
	return &Fixtures{
		Users: []User{
			{ID: "u1", FirstName: "Aliyah", LastName: "Reyes", Email: "aliyah@mmdc.mcl.edu.ph", Role: "student"},
			{ID: "u2", FirstName: "Marco", LastName: "Santos", Email: "marco@mmdc.mcl.edu.ph", Role: "mentor"},
			{ID: "u3", FirstName: "Dana", LastName: "Cruz", Email: "dana@mmdc.mcl.edu.ph", Role: "admin"},
		},
		Courses: []Course{
			{Code: "MO-IT101", Title: "Introduction to Computing", Units: 3},
			{Code: "MO-GE103", Title: "Purposive Communication", Units: 3},
		},
		Enrollments: map[string][]EnrolledCourse{
			"u1": {{CourseCode: "MO-IT101", Title: "Introduction to Computing", Section: "A", Status: "enrolled"}},
		},
		Invoices: map[string][]InvoiceDetail{
			"u1": {{
				Invoice: Invoice{ID: "inv-1", InvoiceNo: 1001, Status: BillUnpaid, Scheme: SchemeFull, Amount: 25000},
				Items:   []InvoiceItem{{Name: "Tuition", Amount: 25000}},
			}},
		},
		Hits: []SearchHit{{Source: "handbook", Content: "Refunds are processed within 30 days."}},
	}
}

func testToolset() *Toolset {
	return NewToolset(testFixtures().Services(), StaticEnumSource{})
}

func TestToolsetCompleteness(t *testing.T) {
	ts := testToolset()

	want := []string{
		ToolUsersCount, ToolUsersFindOne,
		ToolCoursesFindAll, ToolCoursesFindOne,
		ToolEnrollmentPeriods, ToolActivePeriod, ToolMyCourses,
		ToolLMSModules, ToolLMSModuleContents,
		ToolBillingInvoices, ToolBillingInvoiceDetail,
		ToolKnowledgeSearch,
	}
	if len(ts.Bindings) != len(want) {
		t.Fatalf("expected %d bindings, got %d", len(want), len(ts.Bindings))
	}
	for i, name := range want {
		if ts.Bindings[i].Descriptor.Name != name {
			t.Fatalf("binding %d: expected %s, got %s", i, name, ts.Bindings[i].Descriptor.Name)
		}
		if ts.Handlers[name] == nil {
			t.Fatalf("no handler wired for %s", name)
		}
	}
}

func TestToolsetRoleScoping(t *testing.T) {
	ts := testToolset()
	registry, err := capability.New(ts.Bindings)
	if err != nil {
		t.Fatalf("registry build failed: %v", err)
	}

	names := func(role capability.Role) map[string]bool {
		out := make(map[string]bool)
		for _, d := range registry.ForRole(role) {
			out[d.Name] = true
		}
		return out
	}

	admin := names(capability.RoleAdmin)
	mentor := names(capability.RoleMentor)
	student := names(capability.RoleStudent)

	if len(admin) != len(ts.Bindings) {
		t.Fatalf("admin should reach every tool, got %d of %d", len(admin), len(ts.Bindings))
	}
	for _, name := range []string{ToolUsersCount, ToolUsersFindOne, ToolEnrollmentPeriods} {
		if student[name] || mentor[name] {
			t.Fatalf("%s must be admin-only", name)
		}
	}
	for _, name := range []string{ToolMyCourses, ToolBillingInvoices, ToolBillingInvoiceDetail} {
		if !student[name] {
			t.Fatalf("student should reach %s", name)
		}
		if mentor[name] {
			t.Fatalf("mentor must not reach %s", name)
		}
	}
	for role, set := range map[string]map[string]bool{"mentor": mentor, "student": student} {
		if !set[ToolKnowledgeSearch] {
			t.Fatalf("%s should reach %s", role, ToolKnowledgeSearch)
		}
	}
}

func TestToolsetEnumDerivation(t *testing.T) {
	ts := testToolset()
	for _, b := range ts.Bindings {
		if b.Descriptor.Name != ToolBillingInvoices {
			continue
		}
		status := b.Descriptor.Parameters.Properties["status"]
		if status == nil {
			t.Fatalf("billing status parameter missing")
		}
		want := StaticEnumSource{}.Values(capability.EnumBillStatus)
		if len(status.Enum) != len(want) {
			t.Fatalf("status enum drifted: %v vs %v", status.Enum, want)
		}
		for i := range want {
			if status.Enum[i] != want[i] {
				t.Fatalf("status enum drifted at %d: %v vs %v", i, status.Enum, want)
			}
		}
		return
	}
	t.Fatalf("billing_invoices binding not found")
}

func TestRequesterEnforcement(t *testing.T) {
	ts := testToolset()
	ctx := context.Background()

	for _, name := range []string{ToolMyCourses, ToolBillingInvoices, ToolBillingInvoiceDetail, ToolLMSModules} {
		if _, err := ts.Handlers[name](ctx, nil); !errors.Is(err, errNoRequester) {
			t.Fatalf("%s without a requester should fail, got %v", name, err)
		}
	}

	scoped := WithRequester(ctx, "u1")
	result, err := ts.Handlers[ToolMyCourses](scoped, nil)
	if err != nil {
		t.Fatalf("scoped lookup failed: %v", err)
	}
	courses, ok := result.([]EnrolledCourse)
	if !ok || len(courses) != 1 || courses[0].CourseCode != "MO-IT101" {
		t.Fatalf("unexpected enrollment result: %#v", result)
	}

	other := WithRequester(ctx, "u2")
	result, err = ts.Handlers[ToolMyCourses](other, nil)
	if err != nil {
		t.Fatalf("scoped lookup failed: %v", err)
	}
	if courses, _ := result.([]EnrolledCourse); len(courses) != 0 {
		t.Fatalf("another user's enrollments leaked: %#v", courses)
	}
}

func TestBillingInvoiceDetailScopedToRequester(t *testing.T) {
	ts := testToolset()
	args := map[string]any{"invoice_id": "inv-1"}

	owner := WithRequester(context.Background(), "u1")
	result, err := ts.Handlers[ToolBillingInvoiceDetail](owner, args)
	if err != nil {
		t.Fatalf("owner lookup failed: %v", err)
	}
	detail, ok := result.(*InvoiceDetail)
	if !ok || detail.ID != "inv-1" {
		t.Fatalf("unexpected invoice detail: %#v", result)
	}

	stranger := WithRequester(context.Background(), "u2")
	if _, err := ts.Handlers[ToolBillingInvoiceDetail](stranger, args); err == nil {
		t.Fatalf("another user's invoice must not be readable")
	}
}

func TestUsersCountByRole(t *testing.T) {
	ts := testToolset()
	ctx := context.Background()

	result, err := ts.Handlers[ToolUsersCount](ctx, map[string]any{"role": "student"})
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	counted, ok := result.(map[string]any)
	if !ok || counted["count"] != 1 {
		t.Fatalf("unexpected count result: %#v", result)
	}

	result, err = ts.Handlers[ToolUsersCount](ctx, nil)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if counted := result.(map[string]any); counted["count"] != 3 {
		t.Fatalf("unfiltered count wrong: %#v", counted)
	}
}

func TestCoursesFindAllPagination(t *testing.T) {
	ts := testToolset()
	ctx := context.Background()

	result, err := ts.Handlers[ToolCoursesFindAll](ctx, map[string]any{"page": float64(1), "limit": float64(1)})
	if err != nil {
		t.Fatalf("find all failed: %v", err)
	}
	courses, ok := result.([]Course)
	if !ok || len(courses) != 1 || courses[0].Code != "MO-IT101" {
		t.Fatalf("unexpected first page: %#v", result)
	}

	result, err = ts.Handlers[ToolCoursesFindAll](ctx, map[string]any{"search": "communication"})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	courses, _ = result.([]Course)
	if len(courses) != 1 || courses[0].Code != "MO-GE103" {
		t.Fatalf("search filter missed: %#v", courses)
	}
}

func TestKnowledgeSearchUniversal(t *testing.T) {
	ts := testToolset()
	result, err := ts.Handlers[ToolKnowledgeSearch](context.Background(), map[string]any{"query": "refunds"})
	if err != nil {
		t.Fatalf("knowledge search failed: %v", err)
	}
	hits, ok := result.([]SearchHit)
	if !ok || len(hits) != 1 {
		t.Fatalf("unexpected hits: %#v", result)
	}
}
