package pipeline

// Stage names, used for error attribution, latency breakdown keys, and
// metric labels. One invocation passes through them in this order.
const (
	StageLoadingConfig      = "loading_config"
	StageConvertingAudioIn  = "converting_audio_in"
	StageTranscribing       = "transcribing"
	StageRetrieving         = "retrieving"
	StagePrompting          = "prompting"
	StageGenerating         = "generating"
	StageSynthesizing       = "synthesizing"
	StageConvertingAudioOut = "converting_audio_out"
)
