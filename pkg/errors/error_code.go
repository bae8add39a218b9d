package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidOrder         ErrorCode = 102
	ErrCodeInvalidInterval      ErrorCode = 103
	ErrCodeInsufficientData     ErrorCode = 104
	ErrCodeInvalidType          ErrorCode = 105
	ErrCodeMissingParameter     ErrorCode = 106
	ErrCodeInvalidVersion       ErrorCode = 107

	// Data errors (200-299)
	ErrCodeDataNotFound          ErrorCode = 200
	ErrCodeDataSourceUnavailable ErrorCode = 201
	ErrCodeQueryFailed           ErrorCode = 202
	ErrCodeEmptySeries           ErrorCode = 203
	ErrCodeNonMonotonicSeries    ErrorCode = 204
	ErrCodeInvalidBar            ErrorCode = 205
	ErrCodeInvalidTick           ErrorCode = 206

	// Indicator errors (300-399)
	ErrCodeIndicatorNotFound      ErrorCode = 300
	ErrCodeIndicatorAlreadyExists ErrorCode = 301
	ErrCodeIndicatorCalculation   ErrorCode = 302

	// Strategy errors (400-499)
	ErrCodeStrategyNotFound          ErrorCode = 400
	ErrCodeStrategyAlreadyRegistered ErrorCode = 401
	ErrCodeStrategyConfigError       ErrorCode = 402
	ErrCodeStrategyRuntimeError      ErrorCode = 403
	ErrCodeVersionMismatch           ErrorCode = 404

	// Order errors (500-599)
	ErrCodeOrderRejected        ErrorCode = 500
	ErrCodeTradingDisabled      ErrorCode = 501
	ErrCodeUnsupportedSide      ErrorCode = 502
	ErrCodeInsufficientPosition ErrorCode = 503
	ErrCodeOrderNotFound        ErrorCode = 504
	ErrCodeOrderAlreadyFilled   ErrorCode = 505
	ErrCodePositionNotFound     ErrorCode = 506

	// Engine errors (600-699)
	ErrCodeEngineConfigError  ErrorCode = 600
	ErrCodeEngineNoStrategy   ErrorCode = 601
	ErrCodeEngineNoData       ErrorCode = 602
	ErrCodeEngineNoDatasource ErrorCode = 603
	ErrCodeEngineAborted      ErrorCode = 604
	ErrCodeEngineResultsError ErrorCode = 605

	// Market data errors (700-799)
	ErrCodeMarketDataFetchFailed ErrorCode = 700
	ErrCodeMarketDataWriteFailed ErrorCode = 701
	ErrCodeMarketDataParseFailed ErrorCode = 702
	ErrCodeInvalidTimespan       ErrorCode = 703
	ErrCodeInvalidProvider       ErrorCode = 704

	// Callback errors (800-899)
	ErrCodeCallbackFailed ErrorCode = 800
)
