// Package docrag is the Go client for the docrag question answering API.
//
// Basic usage:
//
//	client, err := docrag.New("http://localhost:8080")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	resp, err := client.Ask(ctx, docrag.AskRequest{
//		Question: "What is attention?",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(resp.Answer)
//
// The client carries the conversation session across calls: the first Ask
// creates a session on the server and subsequent calls reuse it, so followup
// questions ("what about chapter 3?") resolve against the remembered book.
// Call ResetSession to start a fresh conversation.
package docrag
