package cart

import (
	"github.com/jhoicas/mesa-api/internal/application/dto"
	"github.com/jhoicas/mesa-api/internal/domain/entity"
	"github.com/jhoicas/mesa-api/pkg/money"
)

// Summarize arma la vista del carrito. Sin identidad no hay proyección de crédito y todos
// los métodos de pago quedan habilitados.
func Summarize(c *entity.Cart, user *entity.UserIdentity) *dto.CartSummaryDTO {
	out := &dto.CartSummaryDTO{
		Items:         make([]dto.CartItemDTO, 0, len(c.Items)),
		Offers:        make([]dto.CartOfferDTO, 0, len(c.Offers)),
		Notes:         c.Notes,
		PaymentMethod: string(c.PaymentMethod),
		ItemCount:     c.ItemCount(),
		Subtotal:      c.Subtotal(),
		ServiceCharge: c.ServiceCharge(),
		Total:         c.Total(),
	}
	out.TotalDisplay = money.Format(out.Total)

	for _, l := range c.Items {
		out.Items = append(out.Items, dto.CartItemDTO{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			Image:     l.Product.Image,
			UnitPrice: l.Product.Price,
			Quantity:  l.Quantity,
			Stock:     l.Product.Stock,
			Amount:    l.Amount(),
		})
	}
	for _, l := range c.Offers {
		out.Offers = append(out.Offers, dto.CartOfferDTO{
			OfferID:   l.Offer.ID,
			Name:      l.Offer.Name,
			UnitPrice: l.Offer.Price,
			Quantity:  l.Quantity,
			Amount:    l.Amount(),
		})
	}

	var status *entity.CreditLineStatus
	if user != nil {
		st := c.CreditLineStatus(user.MaxCreditLine, user.RemainingCreditLine)
		status = &st
		credit := CreditStatus(st)
		out.Credit = &credit
	}

	out.PaymentOptions = make([]dto.PaymentOptionDTO, 0, len(entity.PaymentMethods))
	selectedAllowed := true
	for _, m := range entity.PaymentMethods {
		enabled := status == nil || status.AllowsPayment(m)
		if m == c.PaymentMethod && !enabled {
			selectedAllowed = false
		}
		out.PaymentOptions = append(out.PaymentOptions, dto.PaymentOptionDTO{
			Method:   string(m),
			Label:    entity.PaymentMethodLabel(m),
			Enabled:  enabled,
			Selected: m == c.PaymentMethod,
		})
	}
	out.CanOrder = !c.IsEmpty() && selectedAllowed
	return out
}

// CreditStatus proyección de crédito con flags y montos formateados.
func CreditStatus(st entity.CreditLineStatus) dto.CreditStatusDTO {
	remaining := st.ProjectedRemaining()
	return dto.CreditStatusDTO{
		MaxCreditLine:       st.MaxCreditLine,
		RemainingCreditLine: st.RemainingCreditLine,
		UsedCreditLine:      st.UsedCreditLine,
		CartTotal:           st.CartTotal,
		ProjectedUsed:       st.ProjectedUsed,
		ProjectedRemaining:  remaining,
		PercentageUsed:      st.PercentageUsed.Round(2),
		OverLimit:           st.IsOverLimit(),
		NearLimit:           st.IsNearLimit(),
		Display: dto.CreditDisplay{
			MaxCreditLine:      money.Format(st.MaxCreditLine),
			UsedCreditLine:     money.Format(st.UsedCreditLine),
			ProjectedRemaining: money.Format(remaining),
			PercentageUsed:     money.Percent(st.PercentageUsed),
		},
	}
}
