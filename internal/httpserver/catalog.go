package httpserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"grocery-commerce/internal/catalog"
	"grocery-commerce/internal/domain"
	"grocery-commerce/internal/service/pricing"
)

type productList struct {
	Count   int              `json:"count"`
	Results []domain.Product `json:"results"`
}

func (h *handlers) listProducts(c *gin.Context) {
	f := catalog.Filter{
		Category: c.Query("category"),
		Brand:    c.Query("brand"),
		Query:    c.Query("q"),
		InStock:  c.Query("inStock") == "true",
		SortBy:   strings.ToLower(c.Query("sort")),
		SortDesc: strings.EqualFold(c.Query("order"), "desc"),
	}
	products := h.Catalog.Search(f)
	if products == nil {
		products = []domain.Product{}
	}
	respond(c, http.StatusOK, productList{Count: len(products), Results: products})
}

func (h *handlers) getProduct(c *gin.Context) {
	p, ok := h.Catalog.FindByID(c.Param("id"))
	if !ok {
		h.writeError(c, domain.ErrNotFound)
		return
	}
	respond(c, http.StatusOK, p)
}

func (h *handlers) listBrands(c *gin.Context) {
	respond(c, http.StatusOK, h.Catalog.Brands())
}

func (h *handlers) listCategories(c *gin.Context) {
	respond(c, http.StatusOK, h.Catalog.Categories())
}

type timeSlotView struct {
	domain.TimeSlot
	Fee string `json:"fee"`
}

func (h *handlers) listTimeSlots(c *gin.Context) {
	slots := pricing.TimeSlots()
	out := make([]timeSlotView, 0, len(slots))
	for _, s := range slots {
		out = append(out, timeSlotView{TimeSlot: s, Fee: pricing.DeliveryFee(s.Tier).StringFixed(2)})
	}
	respond(c, http.StatusOK, out)
}

func (h *handlers) listPromos(c *gin.Context) {
	respond(c, http.StatusOK, h.Pricing.Promos())
}
