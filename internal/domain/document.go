package domain

import "maps"

const (
	MetaSource       = "source"
	MetaTitle        = "title"
	MetaDescription  = "description"
	MetaPage         = "page"
	MetaTotalPages   = "total_pages"
	MetaChunk        = "chunk"
	MetaLanguage     = "language"
	MetaLanguageCode = "language_code"
	MetaIsGenerated  = "is_generated"
	MetaVideoID      = "video_id"
	MetaAuthor       = "author"
	MetaLink         = "link"
	MetaPublished    = "published"
)

// Document is a unit of extracted text plus metadata. Metadata values are
// either string or bool.
type Document struct {
	Content  string
	Metadata map[string]any
}

func NewDocument(content string, metadata map[string]any) Document {
	if metadata == nil {
		metadata = make(map[string]any)
	}

	return Document{Content: content, Metadata: metadata}
}

// Clone returns a copy whose metadata can be extended without touching the
// original.
func (d Document) Clone() Document {
	return Document{Content: d.Content, Metadata: maps.Clone(d.Metadata)}
}

func (d Document) MetaString(key string) string {
	v, ok := d.Metadata[key].(string)
	if !ok {
		return ""
	}

	return v
}

func (d Document) MetaBool(key string) bool {
	v, ok := d.Metadata[key].(bool)
	return ok && v
}

func TotalLength(docs []Document) int {
	total := 0
	for _, d := range docs {
		total += len([]rune(d.Content))
	}

	return total
}
