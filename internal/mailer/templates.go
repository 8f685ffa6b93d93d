package mailer

// Message bodies below intentionally mirror a plain sendmail-style
// RFC822 header block followed by a blank line and free text, the
// format a sendmail -t invocation expects on stdin.

const infoTemplate = `From: pcron <%s>
To: %s
Content-Type: text/plain; charset="utf-8"
Pcron-Status: INFO
Subject: pcron: %s %s

`

const errorTemplate = `From: pcron <%s>
To: %s
Content-Type: text/plain; charset="utf-8"
Pcron-Status: ERROR
Subject: pcron: ERROR: %s %s

Job %s exited with error code %d.

`

const killedTemplate = `From: pcron <%s>
To: %s
Content-Type: text/plain; charset="utf-8"
Pcron-Status: KILLED
Subject: pcron: KILLED! %s %s

Job %s was killed by signal %s.

`

const skipWaitingTemplate = `From: pcron <%s>
To: %s
Content-Type: text/plain; charset="utf-8"
Pcron-Status: CONFLICT SKIP
Subject: pcron: WARNING! %s %s

The scheduled run for job %s was skipped because another instance
of the job is already waiting to start.
`

const skipRunningTemplate = `From: pcron <%s>
To: %s
Content-Type: text/plain; charset="utf-8"
Pcron-Status: CONFLICT SKIP
Subject: pcron: WARNING! %s %s

The scheduled run for job %s was skipped because another instance
of the job is still running.

    %s

The process is running with pid %d.
`

const killRunningTemplate = `From: pcron <%s>
To: %s
Content-Type: text/plain; charset="utf-8"
Pcron-Status: CONFLICT KILL
Subject: pcron: WARNING! %s %s

Running job %s was killed in favor of the new instance.
`
