package company

import (
	"strconv"

	"github.com/go-chi/chi/v5"
)

// Prefix is where the client area is mounted.
const Prefix = "/clients"

// MountRoutes registers the company routes relative to Prefix.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/companies", h.overview)
	r.Get("/companies/add", h.add)
	r.Post("/companies/add", h.add)
	r.Get("/companies/{companyId}", h.view)
	r.Get("/companies/{companyId}/edit", h.edit)
	r.Post("/companies/{companyId}/edit", h.edit)
	r.Get("/companies/{companyId}/delete", h.delete)
	r.Post("/companies/{companyId}/delete", h.delete)
}

// Routes builds company URLs; templates reach it through page data.
type Routes struct{}

// Overview is the company list.
func (Routes) Overview() string { return Prefix + "/companies" }

// Add is the create form.
func (Routes) Add() string { return Prefix + "/companies/add" }

// View is the detail page of company id.
func (Routes) View(id int64) string { return Prefix + "/companies/" + strconv.FormatInt(id, 10) }

// Edit is the edit form of company id.
func (Routes) Edit(id int64) string { return Routes{}.View(id) + "/edit" }

// Delete removes company id.
func (Routes) Delete(id int64) string { return Routes{}.View(id) + "/delete" }

// History is the audit timeline of company id.
func (Routes) History(id int64) string {
	return "/audit?entity=company&entity_id=" + strconv.FormatInt(id, 10)
}
