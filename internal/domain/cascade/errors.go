package cascade

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrArtifact marks a missing or malformed model artifact. Fatal at
	// startup; never retried.
	ErrArtifact = errors.New("load model artifact failed")

	// ErrInference marks a schema mismatch between the built vector and
	// the model's declared inputs. Indicates a builder/schema drift bug;
	// not retried.
	ErrInference = errors.New("model inference failed")
)
