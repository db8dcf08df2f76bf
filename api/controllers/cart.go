package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/storefront/api/middleware"
	"github.com/angelmondragon/storefront/api/responses"
	"github.com/angelmondragon/storefront/api/validators"
	"github.com/angelmondragon/storefront/internal/cart"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
)

type addItemResponse struct {
	Item cart.LineItem `json:"item"`
	Cart cart.Summary  `json:"cart"`
}

type sessionResponse struct {
	SessionID string `json:"sessionId"`
	Header    string `json:"header"`
}

func cartOwner(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (string, bool) {
	owner := middleware.CartOwnerFromContext(r.Context())
	if owner == "" {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "cart owner missing"))
		return "", false
	}
	return owner, true
}

// writeSummary responds with the post-mutation view of the owner's cart.
func writeSummary(w http.ResponseWriter, r *http.Request, svc cart.Store, owner string, logg *logger.Logger) {
	summary, err := svc.Summary(r.Context(), owner)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	responses.WriteSuccess(w, summary)
}

func pathParam(r *http.Request, name string) (string, error) {
	value := validators.SanitizeString(chi.URLParam(r, name))
	if value == "" {
		return "", pkgerrors.Newf(pkgerrors.CodeValidation, "%s is required", name)
	}
	return value, nil
}

// CartSessionCreate issues a fresh anonymous cart session id.
func CartSessionCreate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccessStatus(w, http.StatusCreated, sessionResponse{
			SessionID: uuid.NewString(),
			Header:    middleware.CartSessionHeader,
		})
	}
}

// CartFetch returns the cart with totals and nudges.
func CartFetch(svc cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := cartOwner(w, r, logg)
		if !ok {
			return
		}
		writeSummary(w, r, svc, owner, logg)
	}
}

// CartReplace overwrites the whole cart with the provided lines.
func CartReplace(svc cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := cartOwner(w, r, logg)
		if !ok {
			return
		}

		var payload replaceCartRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		replacement, err := payload.toCart()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.SaveCart(r.Context(), owner, replacement); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeSummary(w, r, svc, owner, logg)
	}
}

// CartClear empties the cart.
func CartClear(svc cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := cartOwner(w, r, logg)
		if !ok {
			return
		}
		if err := svc.ClearCart(r.Context(), owner); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeSummary(w, r, svc, owner, logg)
	}
}

// CartAddItem adds a product or merges it into the existing line.
func CartAddItem(svc cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := cartOwner(w, r, logg)
		if !ok {
			return
		}

		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.AddToCart(r.Context(), owner, payload.toAddItem())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		summary, err := svc.Summary(r.Context(), owner)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, addItemResponse{Item: item, Cart: summary})
	}
}

// CartRemoveItem deletes every line of the product.
func CartRemoveItem(svc cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := cartOwner(w, r, logg)
		if !ok {
			return
		}
		productID, err := pathParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.RemoveFromCart(r.Context(), owner, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeSummary(w, r, svc, owner, logg)
	}
}

// CartUpdateQuantity sets an absolute quantity; zero or below removes the product.
func CartUpdateQuantity(svc cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := cartOwner(w, r, logg)
		if !ok {
			return
		}
		productID, err := pathParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.UpdateQuantity(r.Context(), owner, productID, *payload.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeSummary(w, r, svc, owner, logg)
	}
}

// CartStepQuantity applies a stepper delta, never going below one.
func CartStepQuantity(svc cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := cartOwner(w, r, logg)
		if !ok {
			return
		}
		productID, err := pathParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload stepQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.StepQuantity(r.Context(), owner, productID, *payload.Delta); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeSummary(w, r, svc, owner, logg)
	}
}

// CartSetGiftWrap toggles gift wrapping of a single line.
func CartSetGiftWrap(svc cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := cartOwner(w, r, logg)
		if !ok {
			return
		}
		lineID, err := pathParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload giftWrapRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.SetGiftWrap(r.Context(), owner, lineID, *payload.GiftWrap); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeSummary(w, r, svc, owner, logg)
	}
}
