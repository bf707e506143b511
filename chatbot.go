// Package chatbot provides a Go client for the Gosuslugi chatbot socket.
//
// A session exchanges a session id for a bearer token over HTTP, opens a
// socket.io (EIO=4) WebSocket, answers the server's authentication
// challenge and keepalive probes, and pairs application events with their
// replies by correlation id.
//
// # Thread Safety
//
// [Client] is safe for concurrent use by multiple goroutines. Frames are
// classified on a single read loop in the order the transport delivers
// them. Listeners registered with [Client.On] never run concurrently with
// each other: connect listeners run inside Connect before the loop starts,
// message, login and ping listeners run on the loop, and close listeners
// run on the loop after its last frame (or inside Close for a client that
// never connected). A listener must not wait for a reply from the same
// client, but it may call Close.
//
// # Basic Usage
//
//	ctx := context.Background()
//
//	client := chatbot.New()
//	client.On(chatbot.EventLogin, func(n *chatbot.Notification) {
//	    log.Println("authenticated")
//	})
//
//	if err := client.Connect(ctx, ""); err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	greeting, err := client.Hello(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(greeting.Content)
//
//	reply, err := client.Say(ctx, "Как получить загранпаспорт?")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, b := range reply.Buttons() {
//	    fmt.Println(b.Label, b.Link)
//	}
//
// # Observability
//
// Use [WithLogger], [WithOnSend], [WithOnReceive] and [WithOnError] to add
// logging and monitoring to the client:
//
//	client := chatbot.New(
//	    chatbot.WithLogger(slog.Default()),
//	    chatbot.WithOnError(func(err error) {
//	        metrics.BadFrames.Inc()
//	    }),
//	)
package chatbot
