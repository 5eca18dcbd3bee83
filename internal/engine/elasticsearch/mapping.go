package elasticsearch

// DefaultIndexName is the default Elasticsearch index for product documents.
const DefaultIndexName = "products"

// buildIndexMapping returns the full JSON mapping for the products index.
//
// Two analyzer pipelines are defined: vietnamese_analyzer (standard tokenizer
// with lowercase and diacritic folding, so "chuột" and "chuot" match) for
// descriptive text, and an edge-ngram pair for autocomplete. The autocomplete
// field is analyzed with edge ngrams at index time but with a plain analyzer
// at search time, so the query text itself is not exploded into prefixes.
func buildIndexMapping() string {
	return `{
  "settings": {
    "number_of_shards": 1,
    "number_of_replicas": 0,
    "analysis": {
      "analyzer": {
        "vietnamese_analyzer": {
          "type": "custom",
          "tokenizer": "standard",
          "filter": ["lowercase", "asciifolding"]
        },
        "autocomplete_analyzer": {
          "type": "custom",
          "tokenizer": "standard",
          "filter": ["lowercase", "autocomplete_filter"]
        },
        "autocomplete_search_analyzer": {
          "type": "custom",
          "tokenizer": "standard",
          "filter": ["lowercase"]
        }
      },
      "filter": {
        "autocomplete_filter": {
          "type": "edge_ngram",
          "min_gram": 2,
          "max_gram": 20
        }
      }
    }
  },
  "mappings": {
    "properties": {
      "id":            { "type": "keyword" },
      "name":          { "type": "text", "analyzer": "vietnamese_analyzer", "fields": { "keyword": { "type": "keyword", "ignore_above": 256 }, "autocomplete": { "type": "text", "analyzer": "autocomplete_analyzer", "search_analyzer": "autocomplete_search_analyzer" } } },
      "description":   { "type": "text", "analyzer": "vietnamese_analyzer" },
      "category":      { "type": "keyword", "fields": { "text": { "type": "text", "analyzer": "vietnamese_analyzer" } } },
      "brand":         { "type": "keyword", "fields": { "text": { "type": "text", "analyzer": "vietnamese_analyzer" } } },
      "price":         { "type": "double" },
      "originalPrice": { "type": "double" },
      "stock":         { "type": "integer" },
      "reviewCount":   { "type": "integer" },
      "rating":        { "type": "float" },
      "discount":      { "type": "float" },
      "availability":  { "type": "keyword" },
      "tags":          { "type": "keyword" },
      "isNew":         { "type": "boolean" },
      "isBestSeller":  { "type": "boolean" },
      "isFeatured":    { "type": "boolean" },
      "image":         { "type": "keyword", "index": false },
      "images":        { "type": "keyword", "index": false },
      "specifications": { "type": "object", "enabled": false },
      "searchText":    { "type": "text", "analyzer": "vietnamese_analyzer" },
      "createdAt":     { "type": "date" },
      "updatedAt":     { "type": "date" }
    }
  }
}`
}
