package usecase

import "go.uber.org/fx"

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	NewDiscountEngine,
	NewInventoryUseCase,
	NewOrderStateMachine,
	NewFulfillmentUseCase,
	NewCheckoutUseCase,
	NewRefundUseCase,
	NewCancellationUseCase,
	NewPaymentUseCase,
	NewOrderUseCase,
	NewCartUseCase,
)
