package verifier

import "errors"

// Fatal stages surface one of these through errors.Is; failures inside the
// per-claim sub-phase are absorbed and never reach the caller.
var (
	// ErrNoSpeech is a user-facing condition, not a pipeline fault: the
	// file transcoded fine but carried nothing to verify.
	ErrNoSpeech = errors.New("no speech detected")

	ErrMediaProcessing = errors.New("media processing failed")
	ErrTranscription   = errors.New("transcription failed")
	ErrClaimParse      = errors.New("claim extraction failed")
	ErrPersist         = errors.New("failed to save verification record")
)
