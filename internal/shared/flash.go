package shared

import "context"

// FlashMessenger queues user-visible notices in the request session so they
// render on the page shown after a redirect.
type FlashMessenger struct{}

// Success queues a success notice.
func (FlashMessenger) Success(ctx context.Context, message string) error {
	return addFlash(ctx, "success", message)
}

// Error queues an error notice.
func (FlashMessenger) Error(ctx context.Context, message string) error {
	return addFlash(ctx, "error", message)
}

func addFlash(ctx context.Context, kind, message string) error {
	sess := SessionFromContext(ctx)
	if sess == nil {
		return ErrSessionMissing
	}
	sess.AddFlash(FlashMessage{Kind: kind, Message: message})
	return nil
}
