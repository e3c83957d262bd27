// Package calendar is the gateway to the remote calendar service.
//
// It defines the event value types shared by the rest of the application
// (Event, TimeSpec, ExistingEvent) and the Gateway interface with its three
// operations: resolving a calendar by display name, listing upcoming events,
// and inserting a single event. Client implements Gateway on top of the
// Google Calendar API; the caldav package provides a second implementation.
//
// Timestamps are carried as the strings the service returns. Nothing in this
// package converts between time zones.
//
// Example usage:
//
//	ctx := context.Background()
//	client, err := calendar.NewClientForAccount(ctx, "default", tokenStore, oauthConfig)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	id, found, err := client.ResolveCalendarID(ctx, "Work")
//	if err != nil || !found {
//	    log.Fatal("calendar not found")
//	}
//
//	events, err := client.ListUpcoming(ctx, id, 10)
package calendar
