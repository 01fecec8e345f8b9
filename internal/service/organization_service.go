package service

import (
	"context"

	"go.uber.org/zap"

	"project-tracker-api/internal/domain"
	"project-tracker-api/internal/events"
	"project-tracker-api/internal/repository"
)

type organizationRepos struct {
	companies   repository.Repository[domain.Company]
	departments repository.Repository[domain.Department]
	teams       repository.Repository[domain.Team]
	users       repository.Repository[domain.User]
	locations   repository.Repository[domain.Location]
	devices     repository.Repository[domain.Device]
}

func newCompanyService(r organizationRepos, pub events.Publisher, logger *zap.Logger) ResourceService[domain.Company] {
	return NewResourceService(Definition[domain.Company]{
		Kind:    domain.KindCompany,
		Filters: map[string]string{"name": "name", "domain": "domain"},
		Order:   "name ASC",
		Describe: func(c *domain.Company) events.Payload {
			return events.Payload{"name": c.Name}
		},
	}, r.companies, pub, logger)
}

func newDepartmentService(r organizationRepos, pub events.Publisher, logger *zap.Logger) ResourceService[domain.Department] {
	return NewResourceService(Definition[domain.Department]{
		Kind:    domain.KindDepartment,
		Filters: map[string]string{"companyId": "company_id"},
		Order:   "name ASC",
		Describe: func(d *domain.Department) events.Payload {
			return events.Payload{"name": d.Name, "companyId": d.CompanyID.String()}
		},
		Prepare: func(ctx context.Context, d *domain.Department) error {
			_, err := loadParent(ctx, r.companies, domain.KindCompany, d.CompanyID)
			return err
		},
	}, r.departments, pub, logger)
}

func newTeamService(r organizationRepos, pub events.Publisher, logger *zap.Logger) ResourceService[domain.Team] {
	return NewResourceService(Definition[domain.Team]{
		Kind:    domain.KindTeam,
		Filters: map[string]string{"companyId": "company_id", "departmentId": "department_id"},
		Order:   "name ASC",
		Describe: func(t *domain.Team) events.Payload {
			p := events.Payload{"name": t.Name, "companyId": t.CompanyID.String()}
			putID(p, "departmentId", t.DepartmentID)
			return p
		},
		Prepare: func(ctx context.Context, t *domain.Team) error {
			if _, err := loadParent(ctx, r.companies, domain.KindCompany, t.CompanyID); err != nil {
				return err
			}
			if t.DepartmentID == nil {
				return nil
			}
			dept, err := loadParent(ctx, r.departments, domain.KindDepartment, *t.DepartmentID)
			if err != nil {
				return err
			}
			if dept.CompanyID != t.CompanyID {
				return crossCompany(domain.KindDepartment)
			}
			return nil
		},
	}, r.teams, pub, logger)
}

func newUserService(r organizationRepos, pub events.Publisher, logger *zap.Logger) ResourceService[domain.User] {
	return NewResourceService(Definition[domain.User]{
		Kind: domain.KindUser,
		Filters: map[string]string{
			"companyId":    "company_id",
			"departmentId": "department_id",
			"teamId":       "team_id",
			"role":         "role",
			"email":        "email",
		},
		Order: "name ASC",
		Describe: func(u *domain.User) events.Payload {
			p := events.Payload{"name": u.Name, "email": u.Email}
			putID(p, "companyId", u.CompanyID)
			putID(p, "teamId", u.TeamID)
			return p
		},
		Prepare: func(ctx context.Context, u *domain.User) error {
			if err := requireParent(ctx, r.companies, domain.KindCompany, u.CompanyID); err != nil {
				return err
			}
			if err := requireParent(ctx, r.departments, domain.KindDepartment, u.DepartmentID); err != nil {
				return err
			}
			return requireParent(ctx, r.teams, domain.KindTeam, u.TeamID)
		},
	}, r.users, pub, logger)
}

func newLocationService(r organizationRepos, pub events.Publisher, logger *zap.Logger) ResourceService[domain.Location] {
	return NewResourceService(Definition[domain.Location]{
		Kind:    domain.KindLocation,
		Filters: map[string]string{"companyId": "company_id"},
		Order:   "name ASC",
		Describe: func(l *domain.Location) events.Payload {
			p := events.Payload{"name": l.Name}
			putID(p, "companyId", l.CompanyID)
			return p
		},
		Prepare: func(ctx context.Context, l *domain.Location) error {
			return requireParent(ctx, r.companies, domain.KindCompany, l.CompanyID)
		},
	}, r.locations, pub, logger)
}

func newDeviceService(r organizationRepos, pub events.Publisher, logger *zap.Logger) ResourceService[domain.Device] {
	return NewResourceService(Definition[domain.Device]{
		Kind: domain.KindDevice,
		Filters: map[string]string{
			"type":           "type",
			"status":         "status",
			"locationId":     "location_id",
			"assignedUserId": "assigned_user_id",
		},
		Order: "name ASC",
		Describe: func(d *domain.Device) events.Payload {
			p := events.Payload{"name": d.Name, "serialNumber": d.SerialNumber}
			putID(p, "locationId", d.LocationID)
			putID(p, "assignedUserId", d.AssignedUserID)
			return p
		},
		Status: func(d *domain.Device) string { return string(d.Status) },
		Prepare: func(ctx context.Context, d *domain.Device) error {
			if err := requireParent(ctx, r.locations, domain.KindLocation, d.LocationID); err != nil {
				return err
			}
			return requireParent(ctx, r.users, domain.KindUser, d.AssignedUserID)
		},
	}, r.devices, pub, logger)
}
