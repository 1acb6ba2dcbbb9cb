// Package batch fans large sets of notifications out through the dispatch
// orchestrator in paced chunks.
//
// Each chunk is dispatched concurrently; a configurable delay between
// chunks keeps downstream providers within their ingest limits. Failures
// are collected per notification, and progress callbacks report strictly
// increasing processed counts after every chunk.
//
//	sender := batch.New(orchestrator)
//	result, err := sender.Send(ctx, requests, batch.Options{
//		BatchSize: 25,
//		Delay:     250 * time.Millisecond,
//		OnProgress: func(p batch.Progress) {
//			fmt.Printf("%d/%d (%d failed)\n", p.Processed, p.Total, p.Failed)
//		},
//	})
package batch
