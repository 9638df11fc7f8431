package searchdb

// Document is the indexed unit. Field names follow the json tags, which is also how
// bleve resolves them against the index mapping.
type Document struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Path      string `json:"path"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
	Class     string `json:"class"`
}

// Located is where an indexed document lives.
type Located struct {
	ID   string
	Path string
}

type Query struct {
	Keyword string
	Offset  int
	Limit   int
	Classes []string
}

// Result is the projection of a hit. Other document fields are not returned.
type Result struct {
	Name    string `json:"name"`
	Content string `json:"content"`
	Path    string `json:"path"`
}

type Response struct {
	Results    []Result `json:"results"`
	Total      uint64   `json:"total"`
	SearchTime string   `json:"search_time"`
}
