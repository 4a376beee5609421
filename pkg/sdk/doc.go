// Package casematch embeds the casematch retrieval core in a Go program:
// it writes face and text embeddings of case records into Valkey or Redis
// and ranks records against a face vector, a text vector, or both.
//
//	client, _ := casematch.New(ctx,
//	    casematch.WithValkey("localhost:6379", ""),
//	    casematch.WithDimensions(512, 384),
//	    casematch.WithEmbedder(myEmbedder),
//	)
//	defer client.Close()
//	_ = client.EnsureIndexes(ctx)
//	_, _ = client.Upsert(ctx, casematch.Person{PID: "UIDB-1", Text: "Male. 40 years old."})
//	hits, _ := client.Search(ctx, casematch.SearchRequest{
//	    Text:    "tall man with a scar on the left cheek",
//	    Filters: casematch.Filters{Gender: "Male"},
//	})
package casematch
