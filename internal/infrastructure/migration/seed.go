package migration

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"instra/internal/infrastructure/persistence/models"
	"instra/internal/shared/logger"
)

type seedPermission struct {
	code   string
	name   string
	module string
}

var baselinePermissions = []seedPermission{
	{"USER_VIEW", "View Users", "Users"},
	{"USER_CREATE", "Create Users", "Users"},
	{"USER_UPDATE", "Update Users", "Users"},
	{"USER_DELETE", "Delete Users", "Users"},

	{"STUDENT_VIEW", "View Students", "Students"},
	{"STUDENT_CREATE", "Create Student", "Students"},
	{"STUDENT_UPDATE", "Update Student", "Students"},
	{"STUDENT_DELETE", "Delete Student", "Students"},

	{"TRAINER_VIEW", "View Trainers", "Trainers"},
	{"TRAINER_CREATE", "Create Trainer", "Trainers"},
	{"TRAINER_UPDATE", "Update Trainer", "Trainers"},
	{"TRAINER_AVAILABILITY", "Manage Availability", "Trainers"},

	{"BATCH_VIEW", "View Batches", "Batches"},
	{"BATCH_CREATE", "Create Batch", "Batches"},
	{"BATCH_UPDATE", "Update Batch", "Batches"},
	{"BATCH_ASSIGN", "Assign Trainer to Batch", "Batches"},

	{"COURSE_VIEW", "View Courses", "Courses"},
	{"COURSE_CREATE", "Create Course", "Courses"},
	{"COURSE_UPDATE", "Update Course", "Courses"},
	{"COURSE_DELETE", "Delete Course", "Courses"},

	{"PLACEMENT_VIEW", "View Placements", "Placements"},
	{"PLACEMENT_CREATE", "Add Placement Record", "Placements"},
	{"PLACEMENT_UPDATE", "Update Placement Record", "Placements"},
	{"PLACEMENT_DRIVE_MANAGE", "Manage Placement Drives", "Placements"},

	{"PAYMENT_VIEW", "View Payments", "Payments"},
	{"PAYMENT_CREATE", "Record Payment", "Payments"},
	{"PAYMENT_APPROVE", "Approve Payment", "Payments"},

	{"CONSULTANT_VIEW", "View Consultants", "Consultants"},
	{"CONSULTANT_CREATE", "Create Consultant", "Consultants"},

	{"ACCESS_ROLE_MANAGE", "Manage Roles", "Access Core"},
	{"ACCESS_PERMISSION_MANAGE", "Manage Permissions", "Access Core"},
	{"ACCESS_PERMISSION_ASSIGN", "Assign Permissions to Roles", "Access Core"},

	{"USER_ONBOARD", "Onboard New User", "User Management"},
	{"PROFILE_CONFIG_VIEW", "View Profile Configurations", "Profile Config"},
	{"PROFILE_CONFIG_MANAGE", "Manage Profile Configurations", "Profile Config"},
}

var baselineRoles = []struct {
	code     string
	name     string
	isSystem bool
}{
	{"ADMIN", "Admin", true},
	{"STAFF", "Staff", false},
	{"TRAINER", "Trainer", false},
	{"STUDENT", "Student", false},
	{"PLACEMENT_OFFICER", "Placement Officer", false},
	{"BATCH_COORDINATOR", "Batch Coordinator", false},
	{"CONSULTANT", "Consultant", false},
}

var adminGrantedCodes = []string{
	"ACCESS_ROLE_MANAGE",
	"ACCESS_PERMISSION_MANAGE",
	"ACCESS_PERMISSION_ASSIGN",
	"USER_ONBOARD",
	"PROFILE_CONFIG_VIEW",
	"PROFILE_CONFIG_MANAGE",
	"USER_VIEW",
	"USER_CREATE",
	"USER_UPDATE",
	"USER_DELETE",
}

var studentGrantedCodes = []string{
	"COURSE_VIEW",
	"PROFILE_CONFIG_VIEW",
}

var baselineProfileConfigs = []struct {
	roleCode   string
	isRequired bool
	storage    string
}{
	{"STUDENT", true, "DEDICATED"},
	{"TRAINER", true, "DEDICATED"},
	{"STAFF", false, "GENERIC"},
	{"CONSULTANT", true, "GENERIC"},
}

// Seed registers the baseline permission universe, system roles, the
// bootstrap grants and the default role profile configs. Idempotent:
// existing rows are left untouched.
func Seed(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, p := range baselinePermissions {
			model := &models.PermissionModel{Code: p.code, Name: p.name, Module: p.module}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(model).Error; err != nil {
				return err
			}
		}

		for _, r := range baselineRoles {
			model := &models.RoleModel{
				Code:     r.code,
				Name:     r.name,
				IsActive: true,
				IsSystem: r.isSystem,
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(model).Error; err != nil {
				return err
			}
		}

		if err := seedGrants(tx, "ADMIN", adminGrantedCodes); err != nil {
			return err
		}
		if err := seedGrants(tx, "STUDENT", studentGrantedCodes); err != nil {
			return err
		}

		for _, c := range baselineProfileConfigs {
			model := &models.RoleProfileConfigModel{
				RoleCode:   c.roleCode,
				IsRequired: c.isRequired,
				Storage:    c.storage,
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(model).Error; err != nil {
				return err
			}
		}

		logger.Info("baseline access data seeded",
			"permissions", len(baselinePermissions),
			"roles", len(baselineRoles))
		return nil
	})
}

func seedGrants(tx *gorm.DB, roleCode string, permissionCodes []string) error {
	var role models.RoleModel
	if err := tx.Where("code = ?", roleCode).First(&role).Error; err != nil {
		return err
	}

	var permissionIDs []uint
	if err := tx.Model(&models.PermissionModel{}).
		Where("code IN ?", permissionCodes).
		Pluck("id", &permissionIDs).Error; err != nil {
		return err
	}

	for _, pid := range permissionIDs {
		grant := &models.RolePermissionModel{RoleID: role.ID, PermissionID: pid}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(grant).Error; err != nil {
			return err
		}
	}
	return nil
}
