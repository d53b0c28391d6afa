package assets

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// span is a byte range into an AssetPath's content.
type span struct {
	start int
	end   int
}

// MetaItem is one key[=value] entry of an asset path's meta section.
// Flag-only items carry an empty Value.
type MetaItem struct {
	Key   string
	Value string
}

// AssetPath identifies an asset as `protocol://path?meta`.
//
// The three parts are kept as cached byte ranges over one content string:
//   - Protocol: the scheme before "://" (e.g. "text", "file"). May be empty.
//   - Path: the body up to "?". Segments are separated by "/".
//   - Meta: ordered `key[=value]` items separated by "&".
//
// Protocol, meta keys and meta values are percent-decoded by their
// accessors. Two paths are equal when protocol and path match and the meta
// items match as an unordered multiset; meta order is retained for
// iteration only.
type AssetPath struct {
	content  string
	protocol span
	path     span
	meta     span
}

// NewAssetPath parses content into an AssetPath. Parsing never fails; use
// ParseAssetPath to reject malformed percent-encoding.
func NewAssetPath(content string) AssetPath {
	p := AssetPath{content: content}
	pathStart := 0
	if index := strings.Index(content, "://"); index >= 0 {
		p.protocol = span{0, index}
		pathStart = index + len("://")
	}
	if index := strings.IndexByte(content[pathStart:], '?'); index >= 0 {
		pathEnd := pathStart + index
		p.path = span{pathStart, pathEnd}
		p.meta = span{pathEnd + len("?"), len(content)}
	} else {
		p.path = span{pathStart, len(content)}
		p.meta = span{len(content), len(content)}
	}
	return p
}

// ParseAssetPath parses content and validates its percent-encoding.
func ParseAssetPath(content string) (AssetPath, error) {
	p := NewAssetPath(content)
	if _, err := url.PathUnescape(p.rawProtocol()); err != nil {
		return AssetPath{}, fmt.Errorf("%w: bad protocol encoding in %q: %v", ErrPathMalformed, content, err)
	}
	for _, raw := range p.rawMetaItems() {
		key, value, _ := strings.Cut(raw, "=")
		if _, err := url.QueryUnescape(key); err != nil {
			return AssetPath{}, fmt.Errorf("%w: bad meta key encoding in %q: %v", ErrPathMalformed, content, err)
		}
		if _, err := url.QueryUnescape(value); err != nil {
			return AssetPath{}, fmt.Errorf("%w: bad meta value encoding in %q: %v", ErrPathMalformed, content, err)
		}
	}
	return p, nil
}

// AssetPathFromParts assembles a path from separate protocol, path and meta
// strings, any of which may be empty.
func AssetPathFromParts(protocol, path, meta string) AssetPath {
	var sb strings.Builder
	if protocol != "" {
		sb.WriteString(protocol)
		sb.WriteString("://")
	}
	sb.WriteString(path)
	if meta != "" {
		sb.WriteString("?")
		sb.WriteString(meta)
	}
	return NewAssetPath(sb.String())
}

// Content returns the complete path string.
func (p AssetPath) Content() string {
	return p.content
}

// rawProtocol returns the undecoded protocol part.
func (p AssetPath) rawProtocol() string {
	return p.content[p.protocol.start:p.protocol.end]
}

// Protocol returns the percent-decoded protocol part. Empty if the path has
// no "://" separator.
func (p AssetPath) Protocol() string {
	raw := p.rawProtocol()
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

// Path returns the path part, without protocol and meta.
func (p AssetPath) Path() string {
	return p.content[p.path.start:p.path.end]
}

// PathParts splits the path part into its segments, treating both "/" and
// "\" as separators and dropping empty segments.
func (p AssetPath) PathParts() []string {
	return strings.FieldsFunc(p.Path(), func(r rune) bool {
		return r == '/' || r == '\\'
	})
}

// lastPathPart returns the final segment of the path part.
func (p AssetPath) lastPathPart() string {
	path := p.Path()
	if index := strings.LastIndexAny(path, `/\`); index >= 0 {
		return path[index+1:]
	}
	return path
}

// PathExtension returns the extension of the last path segment, without the
// dot, or an empty string if the segment has none.
func (p AssetPath) PathExtension() string {
	last := p.lastPathPart()
	if index := strings.LastIndexByte(last, '.'); index >= 0 {
		return last[index+1:]
	}
	return ""
}

// PathWithoutExtension returns the path part with the last segment's
// extension stripped.
func (p AssetPath) PathWithoutExtension() string {
	path := p.Path()
	last := p.lastPathPart()
	if index := strings.LastIndexByte(last, '.'); index >= 0 {
		return path[:len(path)-(len(last)-index)]
	}
	return path
}

// Meta returns the raw meta part, without the leading "?".
func (p AssetPath) Meta() string {
	return p.content[p.meta.start:p.meta.end]
}

// rawMetaItems splits the meta part into undecoded items.
func (p AssetPath) rawMetaItems() []string {
	meta := p.Meta()
	if meta == "" {
		return nil
	}
	var items []string
	for _, part := range strings.Split(meta, "&") {
		if part != "" {
			items = append(items, part)
		}
	}
	return items
}

// MetaItems parses the meta part into ordered, percent-decoded key-value
// pairs. Items without "=" are flags with an empty value.
func (p AssetPath) MetaItems() []MetaItem {
	raw := p.rawMetaItems()
	if raw == nil {
		return nil
	}
	items := make([]MetaItem, 0, len(raw))
	for _, part := range raw {
		key, value, _ := strings.Cut(part, "=")
		items = append(items, MetaItem{
			Key:   decodeMeta(strings.TrimSpace(key)),
			Value: decodeMeta(strings.TrimSpace(value)),
		})
	}
	return items
}

func decodeMeta(raw string) string {
	if decoded, err := url.QueryUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

// HasMetaKey reports whether the meta part carries the given key.
func (p AssetPath) HasMetaKey(key string) bool {
	for _, item := range p.MetaItems() {
		if item.Key == key {
			return true
		}
	}
	return false
}

// MetaValue returns the value of the first meta item with the given key.
func (p AssetPath) MetaValue(key string) (string, bool) {
	for _, item := range p.MetaItems() {
		if item.Key == key {
			return item.Value, true
		}
	}
	return "", false
}

// PathWithMeta returns the combined path and meta parts, without protocol.
func (p AssetPath) PathWithMeta() string {
	return p.content[p.path.start:p.meta.end]
}

// Equal reports whether two paths identify the same asset: protocol and
// path match and meta items match regardless of order.
func (p AssetPath) Equal(other AssetPath) bool {
	return p.normalizedKey() == other.normalizedKey()
}

// String formats the path back to `protocol://path?meta` form.
func (p AssetPath) String() string {
	return p.content
}

// normalizedKey produces the lookup-index key: decoded protocol and path
// plus meta items sorted so that meta order does not split identities.
func (p AssetPath) normalizedKey() string {
	items := p.MetaItems()
	pairs := make([]string, 0, len(items))
	for _, item := range items {
		pairs = append(pairs, item.Key+"="+item.Value)
	}
	sort.Strings(pairs)
	return p.Protocol() + "\x00" + p.Path() + "\x00" + strings.Join(pairs, "&")
}
