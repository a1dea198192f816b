// (c) 2024, Faucet Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package api

// indexPageHTML is the minimal landing page served at GET /. spec.md's
// Non-goals exclude a template engine, so this stays a plain
// fmt.Sprintf-style format string rather than html/template.
const indexPageHTML = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Token Faucet</title></head>
<body>
<h1>Token Faucet</h1>
<p>Node: %s</p>
<p>Dispense amount: %d</p>
<p>POST to /session to start a proof-of-work challenge, then POST to /dispense.</p>
</body>
</html>
`
