// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"net/http"
	"strings"
)

// MediaHandler serves files under the media root. Directory listings are
// never shown.
func MediaHandler(root string) http.Handler {
	files := http.FileServer(http.Dir(root))

	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path == "" || strings.HasSuffix(request.URL.Path, "/") {
			http.NotFound(writer, request)
			return
		}
		writer.Header().Set("Cache-Control", "public, max-age=86400")
		files.ServeHTTP(writer, request)
	})
}
