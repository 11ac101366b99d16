package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// QuestionsColumns holds the columns for the "questions" table.
	QuestionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Unique: true},
		{Name: "title", Type: field.TypeString},
		{Name: "topic", Type: field.TypeString},
		{Name: "difficulty", Type: field.TypeString},
		{Name: "lists", Type: field.TypeJSON, Nullable: true},
		{Name: "position", Type: field.TypeInt, Default: 0},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// QuestionsTable holds the schema information for the "questions" table.
	QuestionsTable = &schema.Table{
		Name:       "questions",
		Columns:    QuestionsColumns,
		PrimaryKey: []*schema.Column{QuestionsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "question_topic_difficulty", Unique: false, Columns: []*schema.Column{QuestionsColumns[2], QuestionsColumns[3]}},
		},
	}

	// SolveRecordsColumns holds the columns for the "solve_records" table.
	SolveRecordsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "user_id", Type: field.TypeString},
		{Name: "question_id", Type: field.TypeString},
		{Name: "title", Type: field.TypeString, Default: ""},
		{Name: "topic", Type: field.TypeString},
		{Name: "difficulty", Type: field.TypeString},
		{Name: "solve_count", Type: field.TypeInt},
		{Name: "first_solved_at", Type: field.TypeTime},
		{Name: "last_updated_at", Type: field.TypeTime},
		{Name: "average_time_spent", Type: field.TypeFloat64, Default: 0},
		{Name: "difficulty_rating", Type: field.TypeInt, Nullable: true},
		{Name: "tags", Type: field.TypeJSON, Nullable: true},
	}
	// SolveRecordsTable holds the schema information for the "solve_records" table.
	SolveRecordsTable = &schema.Table{
		Name:       "solve_records",
		Columns:    SolveRecordsColumns,
		PrimaryKey: []*schema.Column{SolveRecordsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "solverecord_user_id_question_id", Unique: true, Columns: []*schema.Column{SolveRecordsColumns[1], SolveRecordsColumns[2]}},
		},
	}

	// SolveSessionsColumns holds the columns for the "solve_sessions" table.
	// Sessions are an append-only log keyed by user, question and time.
	SolveSessionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "user_id", Type: field.TypeString},
		{Name: "question_id", Type: field.TypeString},
		{Name: "solved_at", Type: field.TypeTime},
		{Name: "time_spent", Type: field.TypeFloat64, Nullable: true},
		{Name: "success", Type: field.TypeBool},
		{Name: "time_of_day", Type: field.TypeString},
		{Name: "day_of_week", Type: field.TypeInt},
		{Name: "session_ordinal", Type: field.TypeInt},
		{Name: "previous_outcome", Type: field.TypeBool, Nullable: true},
		{Name: "recommended_by", Type: field.TypeString, Default: ""},
	}
	// SolveSessionsTable holds the schema information for the "solve_sessions" table.
	SolveSessionsTable = &schema.Table{
		Name:       "solve_sessions",
		Columns:    SolveSessionsColumns,
		PrimaryKey: []*schema.Column{SolveSessionsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "solvesession_user_id_question_id_solved_at", Unique: false, Columns: []*schema.Column{SolveSessionsColumns[1], SolveSessionsColumns[2], SolveSessionsColumns[3]}},
		},
	}

	// UserProfilesColumns holds the columns for the "user_profiles" table.
	UserProfilesColumns = []*schema.Column{
		{Name: "user_id", Type: field.TypeString, Unique: true},
		{Name: "data", Type: field.TypeJSON},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// UserProfilesTable holds the schema information for the "user_profiles" table.
	UserProfilesTable = &schema.Table{
		Name:       "user_profiles",
		Columns:    UserProfilesColumns,
		PrimaryKey: []*schema.Column{UserProfilesColumns[0]},
	}

	// DailyBatchesColumns holds the columns for the "daily_batches" table.
	DailyBatchesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Unique: true},
		{Name: "user_id", Type: field.TypeString},
		{Name: "batch_date", Type: field.TypeString},
		{Name: "batch_type", Type: field.TypeString},
		{Name: "data", Type: field.TypeJSON},
		{Name: "stale", Type: field.TypeBool, Default: false},
		{Name: "expires_at", Type: field.TypeTime},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// DailyBatchesTable holds the schema information for the "daily_batches" table.
	DailyBatchesTable = &schema.Table{
		Name:       "daily_batches",
		Columns:    DailyBatchesColumns,
		PrimaryKey: []*schema.Column{DailyBatchesColumns[0]},
		Indexes: []*schema.Index{
			{Name: "dailybatch_user_id_batch_date", Unique: true, Columns: []*schema.Column{DailyBatchesColumns[1], DailyBatchesColumns[2]}},
			{Name: "dailybatch_batch_date", Unique: false, Columns: []*schema.Column{DailyBatchesColumns[2]}},
		},
	}

	// BatchEventsColumns holds the columns for the "batch_events" table.
	BatchEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Unique: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "user_id", Type: field.TypeString},
		{Name: "batch_id", Type: field.TypeString, Nullable: true},
		{Name: "kind", Type: field.TypeString},
		{Name: "detail", Type: field.TypeJSON, Nullable: true},
	}
	// BatchEventsTable holds the schema information for the "batch_events" table.
	BatchEventsTable = &schema.Table{
		Name:       "batch_events",
		Columns:    BatchEventsColumns,
		PrimaryKey: []*schema.Column{BatchEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "batchevent_user_id_sequence", Unique: false, Columns: []*schema.Column{BatchEventsColumns[3], BatchEventsColumns[1]}},
			{Name: "batchevent_timestamp", Unique: false, Columns: []*schema.Column{BatchEventsColumns[2]}},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		QuestionsTable,
		SolveRecordsTable,
		SolveSessionsTable,
		UserProfilesTable,
		DailyBatchesTable,
		BatchEventsTable,
	}
)
