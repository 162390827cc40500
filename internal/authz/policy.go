package authz

import (
	"sort"
	"strings"

	"github.com/comandero-software/comandero/internal/domain"
)

// Well-known page targets used by redirect decisions.
const (
	StaffSignInPath    = "/auth/login"
	StaffHomePath      = "/dashboard"
	CustomerSignInPath = "/customer/login"
	CustomerHomePath   = "/customer"
)

// Requirement is what a path prefix demands of the request's principal.
type Requirement int

const (
	// Public paths admit anyone.
	Public Requirement = iota
	// StaffOnly paths admit only staff principals.
	StaffOnly
	// CustomerOnly paths admit only customer principals.
	CustomerOnly
	// StaffEntry paths are the staff realm's sign-in pages: public, but an
	// already-authenticated staff principal is bounced to the dashboard
	// instead of being shown the login form again.
	StaffEntry
	// CustomerEntry is the customer realm's counterpart of StaffEntry.
	CustomerEntry
)

// Rule binds a path prefix to a requirement. A prefix matches the path
// itself and everything below it.
type Rule struct {
	Prefix      string
	Requirement Requirement
}

// Decision is the outcome of evaluating a request against the policy.
type Decision struct {
	Allowed    bool
	RedirectTo string
}

var (
	allow = Decision{Allowed: true}
)

func redirect(target string) Decision {
	return Decision{RedirectTo: target}
}

// Policy is a table-driven route authorization policy. Two realms share one
// route namespace, so every protected prefix names the realm it requires; a
// bare "is authenticated" check would grant staff pages to customers and
// vice versa.
type Policy struct {
	rules []Rule
}

// NewPolicy builds a policy. Rules are evaluated longest-prefix-first so a
// specific rule (e.g. /customer/login) overrides a broader one (/customer).
func NewPolicy(rules []Rule) *Policy {
	sorted := make([]Rule, len(rules))
	copy(sorted, rules)
	sort.Slice(sorted, func(i, j int) bool {
		return len(sorted[i].Prefix) > len(sorted[j].Prefix)
	})
	return &Policy{rules: sorted}
}

// DefaultPolicy returns the platform's route policy table.
func DefaultPolicy() *Policy {
	return NewPolicy([]Rule{
		{Prefix: "/auth", Requirement: StaffEntry},
		{Prefix: "/dashboard", Requirement: StaffOnly},
		{Prefix: "/api/orders", Requirement: StaffOnly},
		{Prefix: "/api/ws", Requirement: StaffOnly},
		{Prefix: "/api/webhooks", Requirement: StaffOnly},
		{Prefix: "/customer/login", Requirement: CustomerEntry},
		{Prefix: "/customer/register", Requirement: CustomerEntry},
		{Prefix: "/customer", Requirement: CustomerOnly},
		{Prefix: "/api/customer", Requirement: CustomerOnly},
		{Prefix: "/api/customer/login", Requirement: Public},
		{Prefix: "/api/customer/register", Requirement: Public},
		{Prefix: "/api/auth/customer", Requirement: CustomerOnly},
	})
}

// Decide evaluates a path against the policy for the given principal. It is
// a pure function: no I/O, no transport concerns.
func (p *Policy) Decide(path string, principal domain.Principal) Decision {
	rule, ok := p.match(path)
	if !ok {
		return allow
	}

	switch rule.Requirement {
	case StaffOnly:
		if principal.IsStaff() {
			return allow
		}
		return redirect(StaffSignInPath)

	case CustomerOnly:
		if principal.IsCustomer() {
			return allow
		}
		return redirect(CustomerSignInPath)

	case StaffEntry:
		if principal.IsStaff() {
			return redirect(StaffHomePath)
		}
		return allow

	case CustomerEntry:
		if principal.IsCustomer() {
			return redirect(CustomerHomePath)
		}
		return allow

	default:
		return allow
	}
}

func (p *Policy) match(path string) (Rule, bool) {
	for _, rule := range p.rules {
		if path == rule.Prefix || strings.HasPrefix(path, rule.Prefix+"/") {
			return rule, true
		}
	}
	return Rule{}, false
}
