// Package manifest resolves an extension's manifest.json, including
// localized names and an embeddable icon.
package manifest

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/crxaudit/crxaudit-cli/internal/crx"
	secerrors "github.com/crxaudit/crxaudit-cli/internal/shared/errors"
)

const manifestEntry = "manifest.json"

// raw mirrors the manifest.json fields the analysis cares about.
type raw struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	ManifestVersion int               `json:"manifest_version"`
	Permissions     []string          `json:"permissions"`
	HostPermissions []string          `json:"host_permissions"`
	Icons           map[string]string `json:"icons"`
	DefaultLocale   string            `json:"default_locale"`
}

// Manifest is the resolved manifest: the name has been localized where
// possible and Icon holds a data URI when an icon entry could be read.
type Manifest struct {
	Name            string
	Version         string
	ManifestVersion int
	Permissions     []string
	HostPermissions []string
	Icon            string
}

// Resolve reads and resolves manifest.json from the archive. A missing or
// unparseable manifest aborts the analysis; locale and icon resolution
// degrade gracefully.
func Resolve(ar crx.Archive) (*Manifest, error) {
	if !ar.Has(manifestEntry) {
		return nil, secerrors.ErrManifestNotFound
	}

	text, err := ar.ReadText(manifestEntry)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", secerrors.ErrEntryRead, err)
	}

	var r raw
	if err := json.Unmarshal([]byte(text), &r); err != nil {
		return nil, fmt.Errorf("%w: %v", secerrors.ErrManifestParse, err)
	}

	version := r.ManifestVersion
	if version != 2 && version != 3 {
		version = 2
	}

	return &Manifest{
		Name:            resolveName(ar, r.Name, r.DefaultLocale),
		Version:         r.Version,
		ManifestVersion: version,
		Permissions:     r.Permissions,
		HostPermissions: r.HostPermissions,
		Icon:            resolveIcon(ar, r.Icons),
	}, nil
}

const (
	msgPrefix = "__MSG_"
	msgSuffix = "__"
)

// resolveName resolves a "__MSG_key__" name against the _locales message
// catalogs. The locale chain is default_locale, en, en_US, en_GB, then
// every catalog in the archive in lexicographic order. An unresolvable
// key falls back to the literal name.
func resolveName(ar crx.Archive, name, defaultLocale string) string {
	if !strings.HasPrefix(name, msgPrefix) || !strings.HasSuffix(name, msgSuffix) {
		return name
	}
	key := name[len(msgPrefix) : len(name)-len(msgSuffix)]
	if key == "" {
		return name
	}

	if defaultLocale == "" {
		defaultLocale = "en"
	}
	locales := []string{defaultLocale, "en", "en_US", "en_GB"}
	for _, locale := range locales {
		if msg, ok := lookupMessage(ar, localeCatalogPath(locale), key); ok {
			return msg
		}
	}

	for _, catalog := range allLocaleCatalogs(ar) {
		if msg, ok := lookupMessage(ar, catalog, key); ok {
			return msg
		}
	}
	return name
}

func localeCatalogPath(locale string) string {
	return "_locales/" + locale + "/messages.json"
}

func allLocaleCatalogs(ar crx.Archive) []string {
	var catalogs []string
	for _, entry := range ar.Entries() {
		if strings.HasPrefix(entry, "_locales/") && strings.HasSuffix(entry, "/messages.json") {
			catalogs = append(catalogs, entry)
		}
	}
	sort.Strings(catalogs)
	return catalogs
}

func lookupMessage(ar crx.Archive, catalog, key string) (string, bool) {
	if !ar.Has(catalog) {
		return "", false
	}
	text, err := ar.ReadText(catalog)
	if err != nil {
		return "", false
	}

	var messages map[string]struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(text), &messages); err != nil {
		return "", false
	}

	if entry, ok := messages[key]; ok && entry.Message != "" {
		return entry.Message, true
	}
	return "", false
}

// iconPreference is the size order used when picking an icon to embed.
var iconPreference = []string{"48", "128", "16"}

func resolveIcon(ar crx.Archive, icons map[string]string) string {
	for _, size := range iconPreference {
		p, ok := icons[size]
		if !ok {
			continue
		}
		p = crx.NormalizeEntryPath(p)
		if !crx.SafeEntryPath(p) || !ar.Has(p) {
			continue
		}

		b64, err := ar.ReadBase64(p)
		if err != nil {
			continue
		}

		mime := "image/jpeg"
		if strings.HasSuffix(strings.ToLower(p), ".png") {
			mime = "image/png"
		}
		return "data:" + mime + ";base64," + b64
	}
	return ""
}
