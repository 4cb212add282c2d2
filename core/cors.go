package core

import "net/http"

var corsHeaders = [][2]string{
	{"Access-Control-Allow-Origin", "*"},
	{"Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS"},
	{"Access-Control-Allow-Headers", "Content-Type, Authorization"},
	{"Access-Control-Max-Age", "86400"},
}

func applyCORS(header http.Header) {
	for _, pair := range corsHeaders {
		header.Set(pair[0], pair[1])
	}
}
