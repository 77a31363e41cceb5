package sqlinline

// Provider API keys managed with catalogctl set-key. properties records where
// the key came from.
const QEnsureIntegrationTokensTable = `--sql 5a7c9e1b-3d4f-4b62-8a0e-2f6d8b1c4e97
create table if not exists integration_tokens (
    provider text primary key,
    token text not null,
    properties jsonb not null default '{}'::jsonb,
    updated_at timestamptz not null default now()
);
`

const QSelectIntegrationToken = `--sql 8a8e0d52-7f5d-4f21-8b7d-f7d4b821eed7
select token, properties->>'source', updated_at
from integration_tokens
where provider = $1;
`

const QUpsertIntegrationToken = `--sql 6d4f5660-0f7c-4f73-a1f3-9ab6d5e6c7a3
insert into integration_tokens (provider, token, properties)
values ($1, $2, jsonb_build_object('source', $3::text))
on conflict (provider) do update
set token = excluded.token,
    properties = integration_tokens.properties || excluded.properties,
    updated_at = now();
`

const QDeleteIntegrationToken = `--sql c2e71f40-9b3a-4d58-a6f1-7e08d4b95c21
delete from integration_tokens where provider = $1;
`
