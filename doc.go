// Package allscreenshots provides a Go client SDK for the AllScreenshots
// API, a hosted service that captures web pages as images.
//
// Every call goes through one request engine that attaches credentials,
// retries transient failures with exponential backoff and turns error
// responses into a single *Error type.
//
// Basic usage:
//
//	client, err := allscreenshots.New(allscreenshots.WithAPIKey("your-api-key"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Capture a page
//	image, err := client.TakeScreenshot(ctx, &allscreenshots.ScreenshotRequest{
//	    URL: "https://example.com",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Without WithAPIKey the key is read from ALLSCREENSHOTS_API_KEY.
//
// Errors can be matched by kind:
//
//	if errors.Is(err, allscreenshots.ErrRateLimited) {
//	    // back off
//	}
package allscreenshots
