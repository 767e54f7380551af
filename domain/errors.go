package domain

import "errors"

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrIllegalTransition = errors.New("illegal transition of order status")
	ErrAlreadyRefunded   = errors.New("order has already been refunded")
	ErrNotAuthenticated  = errors.New("user is not authenticated")
	ErrEmptyCartGroup    = errors.New("cart group is empty, nothing to checkout")
)
