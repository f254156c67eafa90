package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Authorization errors
	CodeNotOwner         Code = "NOT_OWNER"
	CodeNotCreditor      Code = "NOT_CREDITOR"
	CodeNotDebtor        Code = "NOT_DEBTOR"
	CodeNotContractOwner Code = "NOT_CONTRACT_OWNER"
	CodeCallerNotParty   Code = "CALLER_NOT_PARTY"
	CodeNotSafeOwner     Code = "NOT_SAFE_OWNER"
	CodeGrantInvalid     Code = "DELEGATION_GRANT_INVALID"

	// State-precondition errors
	CodeClaimNotPending      Code = "CLAIM_NOT_PENDING"
	CodeClaimCompleted       Code = "CLAIM_COMPLETED"
	CodeAttachmentAlreadySet Code = "ATTACHMENT_ALREADY_SET"

	// Value errors
	CodeValueMustBePositive Code = "VALUE_MUST_BE_GREATER_THAN_ZERO"
	CodeRepayingTooMuch     Code = "REPAYING_TOO_MUCH"
	CodeIncorrectValue      Code = "INCORRECT_VALUE"
	CodeInsufficientBalance Code = "INSUFFICIENT_BALANCE"

	// Input-validity errors
	CodeZeroAddress           Code = "ZERO_ADDRESS"
	CodePastDueDate           Code = "PAST_DUE_DATE"
	CodeClaimTokenNotContract Code = "CLAIM_TOKEN_NOT_CONTRACT"
	CodeInvalidMedium         Code = "INVALID_PAYMENT_MEDIUM"
	CodeInvalidBasisPoints    Code = "INVALID_FEE_BASIS_POINTS"

	// Capacity errors
	CodeZeroLength    Code = "ZERO_LENGTH"
	CodeBatchTooLarge Code = "BATCH_TOO_LARGE"
	CodeBatchFailed   Code = "BATCH_FAILED"

	// Delegation wrapping errors
	CodeDelegatedCreateFailed Code = "DELEGATED_CREATE_FAILED"
	CodeDelegatedBatchFailed  Code = "DELEGATED_BATCH_FAILED"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"

	// Filter errors
	CodeInvalidFilter Code = "INVALID_FILTER"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeZeroAddress,
		CodePastDueDate,
		CodeClaimTokenNotContract,
		CodeInvalidMedium,
		CodeInvalidBasisPoints,
		CodeValueMustBePositive,
		CodeZeroLength,
		CodeBatchTooLarge,
		CodeInvalidFilter:
		return codes.InvalidArgument

	// FailedPrecondition - state doesn't allow operation
	case CodeClaimNotPending,
		CodeClaimCompleted,
		CodeAttachmentAlreadySet,
		CodeRepayingTooMuch,
		CodeIncorrectValue,
		CodeInsufficientBalance,
		CodeBatchFailed,
		CodeDelegatedCreateFailed,
		CodeDelegatedBatchFailed:
		return codes.FailedPrecondition

	// PermissionDenied - caller lacks the required role
	case CodeNotOwner,
		CodeNotCreditor,
		CodeNotDebtor,
		CodeNotContractOwner,
		CodeCallerNotParty,
		CodeNotSafeOwner,
		CodeGrantInvalid:
		return codes.PermissionDenied

	// NotFound - resource doesn't exist
	case CodeNotFound:
		return codes.NotFound

	default:
		return codes.Internal
	}
}
