package errors

// ErrorCode represents a specific error code in the system.
type ErrorCode string

const (
	// GeneralInternalServerError represents a generic internal server error.
	GeneralInternalServerError ErrorCode = "general_internal_server_error"
	// GeneralBadRequestError represents a generic bad request error.
	GeneralBadRequestError ErrorCode = "general_bad_request_error"
	// GeneralNotFoundError represents a generic not found error.
	GeneralNotFoundError ErrorCode = "general_not_found_error"
	// GeneralUnauthorizedError represents a generic unauthorized error.
	GeneralUnauthorizedError ErrorCode = "general_unauthorized_error"

	// OrderInvalidInput represents an order with a zero quantity or price.
	OrderInvalidInput ErrorCode = "order_invalid_input"
	// OrderSideMismatch represents an order whose side does not match the book it is added to.
	OrderSideMismatch ErrorCode = "order_side_mismatch"
	// OrderPriceImmutable represents an attempt to change the price of a resting order.
	OrderPriceImmutable ErrorCode = "order_price_immutable"
	// OrderNotFound represents an order id that is not resting in any book.
	OrderNotFound ErrorCode = "order_not_found"
	// OrderUnauthorized represents an attempt to cancel an order owned by another trader.
	OrderUnauthorized ErrorCode = "order_unauthorized"
	// OrderBookEmpty represents a spot-price or next-order query against an empty book.
	OrderBookEmpty ErrorCode = "order_book_empty"

	// AssetInsufficientBalance represents a transfer exceeding the payer's balance.
	AssetInsufficientBalance ErrorCode = "asset_insufficient_balance"
	// AssetInsufficientAllowance represents a transfer exceeding the approved allowance.
	AssetInsufficientAllowance ErrorCode = "asset_insufficient_allowance"

	// RedisConfigError represents an error when the Redis configuration is invalid or nil.
	RedisConfigError ErrorCode = "redis_config_error"
	// RedisConnectionError represents an error when connecting to Redis.
	RedisConnectionError ErrorCode = "redis_connection_error"
	// RedisDisconnectionError represents an error when disconnecting from Redis.
	RedisDisconnectionError ErrorCode = "redis_disconnection_error"
	// RedisPingError represents an error when pinging Redis.
	RedisPingError ErrorCode = "redis_pinging_error"
	// RedisGetError represents an error when getting a value from Redis.
	RedisGetError ErrorCode = "redis_get_error"
	// RedisSetError represents an error when setting a value in Redis.
	RedisSetError ErrorCode = "redis_set_error"
	// RedisDelError represents an error when deleting a value from Redis.
	RedisDelError ErrorCode = "redis_del_error"
)
