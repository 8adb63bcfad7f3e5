// Package receipt renders a transaction as a printable PDF and archives it
// to a storage disk.
package receipt

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/shashiranjanraj/paintpos/app/models"
	"github.com/shashiranjanraj/paintpos/config"
	"github.com/shashiranjanraj/paintpos/pkg/storage"
)

// Shop is the letterhead printed at the top of every receipt.
type Shop struct {
	Name    string
	Address string
	Contact string
}

func ShopFromConfig() Shop {
	return Shop{Name: config.ShopName(), Address: config.ShopAddress(), Contact: config.ShopContact()}
}

// Renderer draws receipts for one shop in one time zone.
type Renderer struct {
	shop Shop
	loc  *time.Location
}

func NewRenderer(shop Shop, loc *time.Location) *Renderer {
	if loc == nil {
		loc = time.UTC
	}
	return &Renderer{shop: shop, loc: loc}
}

// Default renders with the shop and time zone from config.
func Default() *Renderer { return NewRenderer(ShopFromConfig(), config.Location()) }

const (
	pageCenter = 105.0
	colItem    = 14.0
	colQty     = 80.0
	colPrice   = 120.0
	colTotal   = 160.0
	rowHeight  = 8.0
	pageBottom = 280.0
)

// Render writes tx as an A4 PDF to w.
func (r *Renderer) Render(w io.Writer, tx models.Transaction) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Receipt "+tx.ID, true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	centered := func(y float64, s string) {
		s = tr(s)
		pdf.Text(pageCenter-pdf.GetStringWidth(s)/2, y, s)
	}

	pdf.SetFont("Helvetica", "B", 18)
	centered(20, r.shop.Name)
	pdf.SetFont("Helvetica", "", 11)
	centered(28, r.shop.Address)
	centered(34, r.shop.Contact)

	pdf.SetLineWidth(0.7)
	pdf.Line(10, 42, 200, 42)

	pdf.SetFont("Helvetica", "B", 14)
	centered(55, "Sales Receipt")

	pdf.SetFont("Helvetica", "", 11)
	pdf.Text(colItem, 70, tr("Customer Name: "+tx.CustomerName))
	pdf.Text(colItem, 78, "Date: "+r.date(tx))

	y := 95.0
	pdf.SetLineWidth(0.5)
	pdf.Line(10, y-5, 200, y-5)
	header := func() {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.Text(colItem, y, "Item")
		pdf.Text(colQty, y, "Qty")
		pdf.Text(colPrice, y, "Price")
		pdf.Text(colTotal, y, "Total")
		y += rowHeight
		pdf.SetFont("Helvetica", "", 11)
	}
	header()

	for _, it := range tx.Items {
		if y > pageBottom {
			pdf.AddPage()
			y = 20
			header()
		}
		name := it.Name
		if name == "" {
			name = "N/A"
		}
		pdf.Text(colItem, y, tr(name))
		pdf.Text(colQty, y, fmt.Sprint(it.Qty))
		pdf.Text(colPrice, y, "P"+it.Price.StringFixed(0))
		pdf.Text(colTotal, y, "P"+it.Total.StringFixed(0))
		y += rowHeight
	}

	if y > pageBottom-34 {
		pdf.AddPage()
		y = 20
	}
	y += 2
	pdf.Line(10, y, 200, y)

	y += 12
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Text(colItem, y, "Total Amount: P"+tx.TotalAmount.StringFixed(0))

	y += 20
	pdf.SetFont("Helvetica", "I", 10)
	centered(y, "Thank you for your purchase!")

	return pdf.Output(w)
}

func (r *Renderer) date(tx models.Transaction) string {
	if !tx.HasTimestamp() {
		return "N/A"
	}
	return tx.Timestamp.In(r.loc).Format("1/2/2006, 3:04:05 PM")
}

// Bytes renders tx into memory.
func (r *Renderer) Bytes(tx models.Transaction) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, tx); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Filename is the download name of the receipt for tx.
func Filename(tx models.Transaction) string { return "Receipt_" + tx.ID + ".pdf" }

// Path is where the archived copy of tx lives on a disk:
// receipts/<yyyy>/<mm>/<id>.pdf. Transactions without a timestamp go under
// receipts/undated.
func (r *Renderer) Path(tx models.Transaction) string {
	if !tx.HasTimestamp() {
		return "receipts/undated/" + tx.ID + ".pdf"
	}
	return tx.Timestamp.In(r.loc).Format("receipts/2006/01/") + tx.ID + ".pdf"
}

// Archive renders tx and stores it on disk, returning the stored path.
func (r *Renderer) Archive(ctx context.Context, disk storage.Disk, tx models.Transaction) (string, error) {
	b, err := r.Bytes(tx)
	if err != nil {
		return "", fmt.Errorf("receipt: render %s: %w", tx.ID, err)
	}
	path := r.Path(tx)
	if err := disk.Put(ctx, path, b, "application/pdf"); err != nil {
		return "", fmt.Errorf("receipt: archive %s: %w", tx.ID, err)
	}
	return path, nil
}
