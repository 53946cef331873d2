package ioerrors

import (
	"errors"
	"strings"
)

// Walker (W) Errors
var (
	ErrIntegrityMismatch         = errors.New("W1|IntegrityMismatch: Recomputed instruction result disagrees with the trace's reported push.")
	ErrStackUnderflow            = errors.New("W2|StackUnderflow: Operand requested beyond the simulated stack depth.")
	ErrUnresolvedCreationAddress = errors.New("W3|UnresolvedCreationAddress: Creation sub-trace has no concrete contract address.")
	ErrUnrecognizedInstruction   = errors.New("W4|UnrecognizedInstruction: Instruction name is not part of the known instruction set.")
	ErrCallDepthExceeded         = errors.New("W5|CallDepthExceeded: Nested call frames exceed the configured depth limit.")
	ErrMissingReturnValue        = errors.New("W6|MissingReturnValue: Instruction reported no push where one is required.")
)

// Fetch (F) Errors
var (
	ErrReceiptTraceMismatch   = errors.New("F1|ReceiptTraceMismatch: Block traces and receipts do not line up.")
	ErrAmbiguousReceiptTarget = errors.New("F2|AmbiguousReceiptTarget: Receipt carries both a recipient and a created contract.")
)

// Shard (S) Errors
var (
	ErrShardContiguityViolation = errors.New("S1|ShardContiguityViolation: Shard block ranges leave a gap or overlap.")
	ErrNoShardsFound            = errors.New("S2|NoShardsFound: No trace shard covers the requested block range.")
	ErrMalformedShardName       = errors.New("S3|MalformedShardName: File name does not follow <start>_<length>.trace.")
)

// Codec (C) Errors
var (
	ErrBadArtifactHeader = errors.New("C1|BadArtifactHeader: Artifact magic, kind or version is not recognised.")
)

var known = []error{
	ErrIntegrityMismatch,
	ErrStackUnderflow,
	ErrUnresolvedCreationAddress,
	ErrUnrecognizedInstruction,
	ErrCallDepthExceeded,
	ErrMissingReturnValue,
	ErrReceiptTraceMismatch,
	ErrAmbiguousReceiptTarget,
	ErrShardContiguityViolation,
	ErrNoShardsFound,
	ErrMalformedShardName,
	ErrBadArtifactHeader,
}

// Lookup returns the coded sentinel wrapped somewhere in err, or nil.
func Lookup(err error) error {
	if err == nil {
		return nil
	}
	for _, k := range known {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

func coded(err error) string {
	if k := Lookup(err); k != nil {
		return k.Error()
	}
	return err.Error()
}

// GetErrorName extracts the error name from the error message.
func GetErrorName(err error) string {
	if err == nil {
		return "No Error"
	}
	errStr := coded(err)
	if !strings.Contains(errStr, "|") || !strings.Contains(errStr, ":") {
		return errStr
	}
	parts := strings.SplitN(errStr, "|", 2)
	nameParts := strings.SplitN(parts[1], ":", 2)
	return strings.TrimSpace(nameParts[0])
}

// GetErrorCode extracts the error code from the error message.
func GetErrorCode(err error) string {
	if err == nil {
		return ""
	}
	errStr := coded(err)
	if !strings.Contains(errStr, "|") {
		return ""
	}
	parts := strings.SplitN(errStr, "|", 2)
	return strings.TrimSpace(parts[0])
}

// GetErrorCodeWithName returns the error code and name in the format "Code_ErrorName".
func GetErrorCodeWithName(err error) string {
	code := GetErrorCode(err)
	name := GetErrorName(err)
	if code == "" || name == "" {
		return ""
	}
	return code + "_" + name
}

// GetErrorDesc extracts the error description from the error message.
func GetErrorDesc(err error) string {
	if err == nil {
		return ""
	}
	parts := strings.SplitN(coded(err), ":", 2)
	if len(parts) < 2 {
		return "DESC NOT SET"
	}
	return strings.TrimSpace(parts[1])
}
