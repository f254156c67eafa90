package i18n

// Error codes must match the codes defined in internal/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeNotOwner              = "NOT_OWNER"
	CodeNotCreditor           = "NOT_CREDITOR"
	CodeNotDebtor             = "NOT_DEBTOR"
	CodeNotContractOwner      = "NOT_CONTRACT_OWNER"
	CodeCallerNotParty        = "CALLER_NOT_PARTY"
	CodeNotSafeOwner          = "NOT_SAFE_OWNER"
	CodeGrantInvalid          = "DELEGATION_GRANT_INVALID"
	CodeClaimNotPending       = "CLAIM_NOT_PENDING"
	CodeClaimCompleted        = "CLAIM_COMPLETED"
	CodeAttachmentAlreadySet  = "ATTACHMENT_ALREADY_SET"
	CodeValueMustBePositive   = "VALUE_MUST_BE_GREATER_THAN_ZERO"
	CodeRepayingTooMuch       = "REPAYING_TOO_MUCH"
	CodeIncorrectValue        = "INCORRECT_VALUE"
	CodeInsufficientBalance   = "INSUFFICIENT_BALANCE"
	CodeZeroAddress           = "ZERO_ADDRESS"
	CodePastDueDate           = "PAST_DUE_DATE"
	CodeClaimTokenNotContract = "CLAIM_TOKEN_NOT_CONTRACT"
	CodeInvalidMedium         = "INVALID_PAYMENT_MEDIUM"
	CodeInvalidBasisPoints    = "INVALID_FEE_BASIS_POINTS"
	CodeZeroLength            = "ZERO_LENGTH"
	CodeBatchTooLarge         = "BATCH_TOO_LARGE"
	CodeBatchFailed           = "BATCH_FAILED"
	CodeDelegatedCreateFailed = "DELEGATED_CREATE_FAILED"
	CodeDelegatedBatchFailed  = "DELEGATED_BATCH_FAILED"
	CodeNotFound              = "NOT_FOUND"
	CodeInvalidFilter         = "INVALID_FILTER"
)

var enUSCatalog = &Catalog{
	locale: "en-US",
	messages: map[string]string{
		// Authorization errors
		CodeNotOwner:         "Only the claim's current owner may perform this operation",
		CodeNotCreditor:      "Only the claim's creditor may perform this operation",
		CodeNotDebtor:        "Only the claim's debtor may perform this operation",
		CodeNotContractOwner: "Only the registry owner may change fee settings",
		CodeCallerNotParty:   "Caller must be the claim's creditor or debtor",
		CodeNotSafeOwner:     "Caller is not a member of the delegating account",
		CodeGrantInvalid:     "The delegation grant is missing, expired, or malformed",

		// State-precondition errors
		CodeClaimNotPending:      "Claim is no longer pending",
		CodeClaimCompleted:       "Claim has already reached a terminal state",
		CodeAttachmentAlreadySet: "Claim attachment can only be set once",

		// Value errors
		CodeValueMustBePositive: "Amount must be greater than zero",
		CodeRepayingTooMuch:     "Payment of {{.Amount}} exceeds the {{.Remaining}} remaining on the claim",
		CodeIncorrectValue:      "Tendered value {{.Tendered}} does not match the transfer price {{.Price}}",
		CodeInsufficientBalance: "Payer balance is insufficient for this payment",

		// Input-validity errors
		CodeZeroAddress:           "Creditor and debtor identities are required",
		CodePastDueDate:           "Due date cannot be in the past",
		CodeClaimTokenNotContract: "Claim token does not resolve to a token contract",
		CodeInvalidMedium:         "Payment medium is invalid",
		CodeInvalidBasisPoints:    "Fee basis points must not exceed 10000",

		// Capacity errors
		CodeZeroLength:    "Batch must contain at least one request",
		CodeBatchTooLarge: "Batch of {{.Size}} exceeds the maximum of {{.Max}} operations",
		CodeBatchFailed:   "Batch rejected: one or more requests failed validation",

		// Delegation wrapping errors
		CodeDelegatedCreateFailed: "Delegated claim creation failed",
		CodeDelegatedBatchFailed:  "Delegated batch creation failed",

		// Storage errors
		CodeNotFound: "The requested claim was not found",

		// Filter errors
		CodeInvalidFilter: "List filter expression is invalid",
	},
}
