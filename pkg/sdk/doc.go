// Package noteseek provides an embedded Go client for the noteseek semantic
// note search engine backed by Redis with the search module.
//
// The client wires the storage and search services directly over a Redis
// connection, without going through the HTTP API:
//
//	client, _ := noteseek.New(ctx,
//	    noteseek.WithRedis("localhost:6379", ""),
//	    noteseek.WithEmbedder(myEmbedder),
//	)
//	defer client.Close()
//
//	_, _, _ = client.UpsertNote(ctx, noteseek.Note{
//	    ID:      "note-1",
//	    Title:   "悉尼咖啡地图",
//	    Content: "好喝的拿铁推荐",
//	})
//	res, _ := client.Search(ctx, noteseek.SearchRequest{Query: "咖啡"})
//
// Summaries require a generator (WithGenerator); without one, search works
// but with_summary requests fail.
package noteseek
