// Package identitysdk is a small Go client for the identity service HTTP API.
//
// The server handlers share this package's response types, so the wire format
// is defined in exactly one place. The Client keeps a cookie jar, which is all
// the session handling the API needs:
//
//	sdk, _ := identitysdk.New("https://id.example.com")
//	if err := sdk.Login(ctx, "user@example.com", "password"); err != nil {
//		// credentials rejected
//	}
//	session, _ := sdk.Session(ctx)
//	fmt.Println(session.Email)
package identitysdk
