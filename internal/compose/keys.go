package compose

// Context keys shared between the composed steps and the report adapter.
// Per-unit keys embed the unit name so narrative runs keep units apart.
const (
	// KeyNarrativePath holds the joined narrative artifact path.
	KeyNarrativePath = "narrative.path"
	// KeyNarrativeSummary holds the JSON summary produced by the summarize step.
	KeyNarrativeSummary = "narrative.summary"
	// KeySampleID carries the operator-supplied sample identifier, seeded
	// into the initial context by the CLI.
	KeySampleID = "sample_id"
	// KeyKeepArtifacts carries the operator toggle for retaining raw clips.
	KeyKeepArtifacts = "keep_artifacts"
)

// RawClipKey is the context key for a unit's unprocessed render output.
func RawClipKey(unit string) string { return "clip." + unit + ".raw_path" }

// ClipKey is the context key for a unit's final post-processed clip.
func ClipKey(unit string) string { return "clip." + unit + ".path" }

// ValidationKey is the context key for a unit's quality-check output.
func ValidationKey(unit string) string { return "validate." + unit + ".report" }

// BenchmarkKey is the context key for a unit's benchmark metrics output.
func BenchmarkKey(unit string) string { return "benchmark." + unit + ".metrics" }

// MetadataKey is the context key for a unit's recorded metadata file path.
func MetadataKey(unit string) string { return "record." + unit + ".metadata_path" }

// GenerateLogKey is the context key for the generate step's stdout.
func GenerateLogKey(unit string) string { return "generate." + unit + ".log" }
