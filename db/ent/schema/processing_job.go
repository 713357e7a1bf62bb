package schema

import (
	"encoding/json"
	"time"

	"entgo.io/ent"
	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"

	"github.com/google/uuid"

	"github.com/dianabombi/student-advisor-sub000/constants"
	"github.com/dianabombi/student-advisor-sub000/db/ent/schema/utils"
)

type ProcessingJob struct{ ent.Schema }

func (ProcessingJob) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "processing_jobs"},
	}
}

func (ProcessingJob) Fields() []ent.Field {
	return []ent.Field{
		field.UUID("id", uuid.UUID{}).Default(uuid.New).Immutable(),
		field.UUID("file_id", uuid.UUID{}),
		field.String("format").NotEmpty().
			Validate(utils.EnumValidator(constants.FileTypes...)),
		field.String("status").NotEmpty().
			Validate(utils.EnumValidator(
				string(constants.JobStatusPending),
				string(constants.JobStatusProcessing),
				string(constants.JobStatusCompleted),
				string(constants.JobStatusFailed),
			)),
		field.Int("progress").Default(0).Min(0).Max(100),
		field.String("document_type").Optional().Nillable(),
		field.Float("confidence").Optional().Nillable(),
		field.Bool("low_confidence").Default(false),
		field.JSON("extracted_json", json.RawMessage{}).
			Optional(),
		field.String("error_message").Optional().Nillable().
			SchemaType(map[string]string{dialect.Postgres: "text"}),
		field.Time("started_at").Default(time.Now),
		field.Time("finished_at").Optional().Nillable(),
	}
}

func (ProcessingJob) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("file", DocumentFile.Type).
			Ref("jobs").
			Field("file_id").
			Unique().
			Required(),
	}
}

func (ProcessingJob) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("status", "started_at"),
		index.Fields("file_id"),
	}
}
