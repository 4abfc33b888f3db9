package database

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// LeadsColumns holds the columns for the "leads" table.
	LeadsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "company_name", Type: field.TypeString, Size: 255},
		{Name: "contact_name", Type: field.TypeString, Size: 255},
		{Name: "email", Type: field.TypeString, Size: 255},
		{Name: "phone", Type: field.TypeString, Nullable: true, Size: 64},
		{Name: "country", Type: field.TypeString, Nullable: true, Size: 128},
		{Name: "stage", Type: field.TypeEnum, Enums: []string{"Prospect", "Qualified", "Proposal", "Won", "Lost"}},
		{Name: "source", Type: field.TypeEnum, Enums: []string{"Referral", "Ads", "Events", "Outbound", "Organic"}},
		{Name: "owner", Type: field.TypeString, Size: 128},
		{Name: "annual_revenue", Type: field.TypeFloat64, Nullable: true},
		{Name: "next_action_date", Type: field.TypeTime, Nullable: true, SchemaType: map[string]string{dialect.Postgres: "date", dialect.SQLite: "date"}},
		{Name: "notes", Type: field.TypeString, Nullable: true, Size: 2147483647},
		{Name: "created_at", Type: field.TypeTime},
	}
	// LeadsTable holds the schema information for the "leads" table.
	LeadsTable = &schema.Table{
		Name:       "leads",
		Columns:    LeadsColumns,
		PrimaryKey: []*schema.Column{LeadsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "lead_stage",
				Unique:  false,
				Columns: []*schema.Column{LeadsColumns[6]},
			},
			{
				Name:    "lead_owner",
				Unique:  false,
				Columns: []*schema.Column{LeadsColumns[8]},
			},
			{
				Name:    "lead_created_at",
				Unique:  false,
				Columns: []*schema.Column{LeadsColumns[12]},
			},
		},
	}
	// SavedViewsColumns holds the columns for the "saved_views" table.
	SavedViewsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "user_id", Type: field.TypeInt},
		{Name: "resource", Type: field.TypeString, Size: 64},
		{Name: "name", Type: field.TypeString, Size: 100},
		{Name: "state", Type: field.TypeJSON},
		{Name: "visibility", Type: field.TypeEnum, Enums: []string{"private", "team", "org"}, Default: "private"},
		{Name: "is_default", Type: field.TypeBool, Default: false},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// SavedViewsTable holds the schema information for the "saved_views" table.
	SavedViewsTable = &schema.Table{
		Name:       "saved_views",
		Columns:    SavedViewsColumns,
		PrimaryKey: []*schema.Column{SavedViewsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "savedview_user_id_resource_name",
				Unique:  true,
				Columns: []*schema.Column{SavedViewsColumns[1], SavedViewsColumns[2], SavedViewsColumns[3]},
			},
		},
	}
	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		LeadsTable,
		SavedViewsTable,
	}
)

// Migrate creates or upgrades the leads and saved_views tables
func (c *Client) Migrate(ctx context.Context) error {
	migrate, err := schema.NewMigrate(c.Driver)
	if err != nil {
		return fmt.Errorf("failed creating schema migrator: %w", err)
	}
	if err := migrate.Create(ctx, Tables...); err != nil {
		return fmt.Errorf("failed creating schema resources: %w", err)
	}
	return nil
}
