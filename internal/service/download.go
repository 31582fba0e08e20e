package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/waveforge/waveforge/internal/domain"
	"github.com/waveforge/waveforge/internal/domain/order"
	"github.com/waveforge/waveforge/internal/port/files"
	"github.com/waveforge/waveforge/internal/port/store"
)

// signedURLTTL bounds individual file links; the order-level window is
// enforced separately via download_expires_at.
const signedURLTTL = 15 * time.Minute

// Download implements the re-entrant download-access flow: order id +
// customer email, valid until the order's download window closes.
type Download struct {
	store  store.Store
	signer files.Signer
	now    func() time.Time
}

// NewDownload creates the download service.
func NewDownload(s store.Store, signer files.Signer) *Download {
	return &Download{store: s, signer: signer, now: time.Now}
}

// FileLink is one retrievable file.
type FileLink struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Type string `json:"type"`
}

// ItemDownloads groups links per purchased item.
type ItemDownloads struct {
	BeatTitle   string     `json:"beatTitle"`
	LicenseName string     `json:"licenseName,omitempty"`
	Files       []FileLink `json:"files"`
}

// Result is the download page payload.
type Result struct {
	Order     *order.Order    `json:"order"`
	Downloads []ItemDownloads `json:"downloads"`
}

// Get verifies ownership and the download window, then produces
// time-limited signed URLs per file. Each successful retrieval bumps the
// item's download counter; the counter is telemetry, not a limit.
func (d *Download) Get(ctx context.Context, orderID, email string) (*Result, error) {
	if orderID == "" || email == "" {
		return nil, fmt.Errorf("%w: orderId and customerEmail are required", domain.ErrValidation)
	}

	o, err := d.store.GetCompletedOrderForEmail(ctx, orderID, email)
	if err != nil {
		return nil, err // ErrNotFound covers both unknown id and wrong email
	}
	if d.now().After(o.DownloadExpiresAt) {
		return nil, fmt.Errorf("order %s: %w", orderID, domain.ErrExpired)
	}

	items, err := d.store.GetOrderItems(ctx, o.ID)
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}

	urlExpiry := d.now().Add(signedURLTTL)
	downloads := make([]ItemDownloads, 0, len(items))
	for _, it := range items {
		keys, fileType, err := d.fileKeys(ctx, it)
		if err != nil {
			slog.Error("download: resolve files failed", "order", o.ID, "item", it.ID, "error", err)
			continue
		}

		links := make([]FileLink, 0, len(keys))
		for _, key := range keys {
			u, err := d.signer.SignedURL(key, urlExpiry)
			if err != nil {
				slog.Error("download: sign url failed", "order", o.ID, "file", key, "error", err)
				continue
			}
			links = append(links, FileLink{Name: key, URL: u, Type: fileType})
		}
		downloads = append(downloads, ItemDownloads{
			BeatTitle:   it.Title,
			LicenseName: it.LicenseName,
			Files:       links,
		})

		if err := d.store.IncrementDownloadCount(ctx, it.ID); err != nil {
			slog.Warn("download: counter update failed", "item", it.ID, "error", err)
		}
	}

	return &Result{Order: o, Downloads: downloads}, nil
}

// fileKeys resolves the storage keys for an item's deliverables from the
// live catalog (files, unlike prices and titles, are not snapshotted).
func (d *Download) fileKeys(ctx context.Context, it order.Item) ([]string, string, error) {
	if it.ItemType == order.ItemSoundKit {
		kit, err := d.store.GetSoundKit(ctx, it.SoundKitID)
		if err != nil {
			return nil, "", err
		}
		return kit.FileKeys, "sound_kit", nil
	}

	tier, err := d.store.GetLicenseTier(ctx, it.LicenseTierID)
	if err != nil {
		return nil, "", err
	}
	keys := tier.FileKeys
	if len(keys) == 0 {
		beat, err := d.store.GetBeat(ctx, it.BeatID)
		if err != nil {
			return nil, "", err
		}
		keys = beat.FileKeys
	}
	return keys, string(tier.Type), nil
}
