package rbac

import (
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

// policy rows: role, resource, action. Roles form a hierarchy:
// Admin inherits HR, HR inherits Employee.
var policies = [][]string{
	{"Employee", "attendance", "check"},
	{"Employee", "attendance", "read"},
	{"Employee", "leave", "apply"},
	{"Employee", "leave", "read"},
	{"Employee", "leave", "cancel"},
	{"Employee", "payroll", "read"},
	{"Employee", "notification", "read"},
	{"Employee", "notification", "update"},
	{"Employee", "employee", "read"},
	{"Employee", "employee", "update-profile"},

	{"HR", "attendance", "manage"},
	{"HR", "leave", "review"},
	{"HR", "payroll", "manage"},
	{"HR", "employee", "manage"},

	{"Admin", "admin", "read"},
}

var groupings = [][]string{
	{"HR", "Employee"},
	{"Admin", "HR"},
}

// NewEnforcer builds a casbin enforcer with the fixed three-role policy.
// The policy set is static: roles are an enum on the user record, not
// tenant-configurable data.
func NewEnforcer() (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, err
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	for _, p := range policies {
		if _, err := e.AddPolicy(p[0], p[1], p[2]); err != nil {
			return nil, err
		}
	}
	for _, g := range groupings {
		if _, err := e.AddGroupingPolicy(g[0], g[1]); err != nil {
			return nil, err
		}
	}

	return e, nil
}
