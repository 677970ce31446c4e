package config

// DefaultPipelineStages is the stage list used when PIPELINE_STAGES is not
// set.  Each entry is key:Label; order is pipeline order.
const DefaultPipelineStages = "lead:New Lead,contacted:Contacted,scheduled:Inspection Scheduled," +
	"completed:Inspection Done,followup:Follow-up / Repairs,closed:Closed"

// PipelineConfig carries the raw pipeline settings.  The stage list is parsed
// by package pipeline so that malformed input can be reported at startup.
type PipelineConfig struct {
	Stages string // PIPELINE_STAGES, comma-separated key:Label pairs
	Strict bool   // PIPELINE_STRICT_STAGES, reject stage keys not in Stages
}

// LoadPipelineConfig reads PIPELINE_STAGES and PIPELINE_STRICT_STAGES.
func LoadPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Stages: envStr("PIPELINE_STAGES", DefaultPipelineStages),
		Strict: envBool("PIPELINE_STRICT_STAGES", false),
	}
}
