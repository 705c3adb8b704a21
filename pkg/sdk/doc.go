// Package cartodex is the Go client for the cartodex HTTP API.
//
// The client covers the hybrid search endpoints (text and image), the
// heatmap projections and the health check:
//
//	client := cartodex.New("http://localhost:8080")
//
//	res, err := client.SearchText(ctx, cartodex.TextQuery{
//		Query: "fish market at Rialto",
//		Limit: 10,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, item := range res.Data {
//		fmt.Println(item.ID, item.Score, item.Content)
//	}
//
// API failures are returned as *APIError carrying the HTTP status code and
// the server's detail message.
package cartodex
