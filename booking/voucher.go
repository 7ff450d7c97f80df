package booking

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"time"

	"roamly/emailer"
	"roamly/models"
	"roamly/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

func voucherSecret() []byte {
	if s := os.Getenv("VOUCHER_SECRET"); s != "" {
		return []byte(s)
	}
	return []byte("dev-voucher-secret")
}

// VoucherPayload returns the signed string encoded into the voucher QR:
// bookingID|sessionID|timestamp|signature. Guides scan it at the meeting
// point and the signature proves it came from us.
func VoucherPayload(bookingID, sessionID string) string {
	data := fmt.Sprintf("%s|%s|%d", bookingID, sessionID, time.Now().Unix())

	h := hmac.New(sha256.New, voucherSecret())
	h.Write([]byte(data))
	sig := base64.StdEncoding.EncodeToString(h.Sum(nil))

	return fmt.Sprintf("%s|%s", data, sig)
}

// VerifyVoucherPayload checks the HMAC on a scanned voucher string.
func VerifyVoucherPayload(payload string) bool {
	idx := -1
	for i := len(payload) - 1; i >= 0; i-- {
		if payload[i] == '|' {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	data, sig := payload[:idx], payload[idx+1:]

	h := hmac.New(sha256.New, voucherSecret())
	h.Write([]byte(data))
	want := base64.StdEncoding.EncodeToString(h.Sum(nil))

	return hmac.Equal([]byte(sig), []byte(want))
}

// GET /api/bookings/:bookingid/voucher
// Renders a PDF voucher with a signed QR code. Paid bookings only.
func DownloadVoucher(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	b, ok := loadOwnedBooking(ctx, w, r, ps.ByName("bookingid"))
	if !ok {
		return
	}

	if b.Status != models.BookingPaid {
		utils.RespondWithError(w, http.StatusConflict, "Voucher is only available for paid bookings")
		return
	}

	qrPNG, err := qrcode.Encode(VoucherPayload(b.BookingID, b.SessionID), qrcode.Medium, 256)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate QR code")
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Tour Voucher")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 10, fmt.Sprintf("Tour: %s", b.Item.TourName))
	pdf.Ln(8)
	if b.Item.Date != "" {
		pdf.Cell(0, 10, fmt.Sprintf("Date: %s", b.Item.Date))
		pdf.Ln(8)
	}
	pdf.Cell(0, 10, fmt.Sprintf("Guests: %d", b.Item.Quantity))
	pdf.Ln(8)
	if b.Customer.Name != "" {
		pdf.Cell(0, 10, fmt.Sprintf("Name: %s", b.Customer.Name))
		pdf.Ln(8)
	}
	pdf.Cell(0, 10, fmt.Sprintf("Amount: %s", emailer.FormatAmount(b.Amount, b.Currency)))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Reference: %s", b.SessionID))
	pdf.Ln(12)

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 40, 40, 40, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate PDF")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=voucher-"+b.BookingID+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
