package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jung-kurt/gofpdf"

	"github.com/acmecorp/invoicedesk/internal/domain"
	"github.com/acmecorp/invoicedesk/internal/store"
)

// InvoicePDFHandler renders a single invoice as a PDF document and streams
// it to the caller.
func (h *Handler) InvoicePDFHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	invoice, err := h.store.GetInvoice(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.countReq("GET", "/dashboard/invoices/{id}/pdf", 404)
			respondWithError(w, http.StatusNotFound, "Not Found")
			return
		}
		h.countReq("GET", "/dashboard/invoices/{id}/pdf", 500)
		respondWithError(w, http.StatusInternalServerError, "Failed to load invoice")
		return
	}

	customer, err := h.store.GetCustomer(r.Context(), invoice.CustomerID)
	if err != nil {
		h.countReq("GET", "/dashboard/invoices/{id}/pdf", 500)
		respondWithError(w, http.StatusInternalServerError, "Failed to load invoice")
		return
	}

	pdf := renderInvoicePDF(invoice, customer)

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=invoice-%s.pdf", invoice.ID))
	if err := pdf.Output(w); err != nil {
		h.countReq("GET", "/dashboard/invoices/{id}/pdf", 500)
		return
	}
	h.countReq("GET", "/dashboard/invoices/{id}/pdf", 200)
}

func renderInvoicePDF(invoice *domain.Invoice, customer *domain.Customer) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 24)
	pdf.Cell(40, 12, "Invoice")
	pdf.Ln(16)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(40, 8, fmt.Sprintf("Invoice ID: %s", invoice.ID))
	pdf.Ln(8)
	pdf.Cell(40, 8, fmt.Sprintf("Date: %s", invoice.Date))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 8, "Bill To")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 11)
	pdf.Cell(40, 8, customer.Name)
	pdf.Ln(8)
	pdf.Cell(40, 8, customer.Email)
	pdf.Ln(14)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(95, 10, "Amount", "1", 0, "L", false, 0, "")
	pdf.CellFormat(95, 10, "Status", "1", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(95, 10, formatCents(invoice.Amount), "1", 0, "L", false, 0, "")
	pdf.CellFormat(95, 10, string(invoice.Status), "1", 1, "L", false, 0, "")

	return pdf
}

// formatCents renders integer minor units as a dollar string.
func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
