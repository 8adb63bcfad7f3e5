package listeners_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/paintpos/app/listeners"
	"github.com/shashiranjanraj/paintpos/app/models"
	"github.com/shashiranjanraj/paintpos/app/pos"
	"github.com/shashiranjanraj/paintpos/app/receipt"
	"github.com/shashiranjanraj/paintpos/app/services"
	"github.com/shashiranjanraj/paintpos/app/store"
	"github.com/shashiranjanraj/paintpos/pkg/event"
	"github.com/shashiranjanraj/paintpos/pkg/storage"
	"github.com/shashiranjanraj/paintpos/pkg/ws"
)

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type harness struct {
	l    *listeners.Listeners
	st   *store.Memory
	disk storage.Disk
	conn *websocket.Conn
}

func setup(t *testing.T) *harness {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := ws.NewHub()
	go hub.Run(ctx)
	srv := httptest.NewServer(hub.Handler())
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	st := store.NewMemory()
	disk := storage.NewLocal(t.TempDir(), "")
	l := &listeners.Listeners{
		Hub:       hub,
		Receipts:  receipt.NewRenderer(receipt.Shop{Name: "Shop"}, time.UTC),
		Disk:      disk,
		Catalog:   services.NewCatalogService(st),
		Threshold: 5,
	}
	l.Register()
	t.Cleanup(event.Flush)
	return &harness{l: l, st: st, disk: disk, conn: conn}
}

func (h *harness) read(t *testing.T) frame {
	t.Helper()
	_ = h.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var f frame
	require.NoError(t, h.conn.ReadJSON(&f))
	return f
}

func TestSaleCommittedPushesAndArchives(t *testing.T) {
	h := setup(t)
	tx := models.Transaction{
		ID:           "tx-7",
		CustomerName: "Maria",
		Items:        []models.TransactionItem{models.NewItem("p1", "Latex", decimal.NewFromInt(100), 2)},
		Timestamp:    time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC),
	}
	tx.TotalAmount = tx.ItemsTotal()

	event.Fire(context.Background(), pos.EventSaleCommitted, tx)

	f := h.read(t)
	assert.Equal(t, listeners.WSSaleCommitted, f.Event)
	var msg listeners.SaleMessage
	require.NoError(t, json.Unmarshal(f.Data, &msg))
	assert.Equal(t, "tx-7", msg.TransactionID)
	assert.Equal(t, "200.00", msg.TotalAmount)
	require.Len(t, msg.Items, 1)
	assert.Equal(t, 2, msg.Items[0].Qty)

	ok, err := h.disk.Exists(context.Background(), "receipts/2024/03/tx-7.pdf")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestProductChangedIsPushed(t *testing.T) {
	h := setup(t)
	event.Fire(context.Background(), services.EventProductChanged, services.ProductChange{
		Action:  models.ActionAddProduct,
		Product: models.Product{ID: "p1", Name: "Enamel"},
	})
	f := h.read(t)
	assert.Equal(t, listeners.WSProductChanged, f.Event)
	assert.Contains(t, string(f.Data), `"Enamel"`)
}

func TestSweepLowStock(t *testing.T) {
	h := setup(t)
	ctx := context.Background()
	for name, stock := range map[string]int{"Thinner": 2, "Latex": 40, "Primer": 4} {
		_, err := h.st.AddProduct(ctx, models.Product{Name: name, Price: decimal.NewFromInt(10), Stock: stock})
		require.NoError(t, err)
	}

	require.NoError(t, h.l.SweepLowStock(ctx))

	f := h.read(t)
	assert.Equal(t, listeners.WSLowStock, f.Event)
	var low []listeners.LowStockItem
	require.NoError(t, json.Unmarshal(f.Data, &low))
	names := []string{}
	for _, it := range low {
		names = append(names, it.Name)
	}
	assert.ElementsMatch(t, []string{"Thinner", "Primer"}, names)
}
