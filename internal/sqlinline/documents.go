package sqlinline

const QEnsureDocumentsTable = `--sql 3f1c2b7e-5a94-4d0e-9b61-2c7d8e4f0a13
create table if not exists catalog_documents (
    name text primary key,
    body jsonb not null,
    updated_at timestamptz not null default now()
);
`

const QSelectDocument = `--sql 9b2e4d61-0c7a-4f38-a5d2-6e1f3b8c9d47
select body
from catalog_documents
where name = $1::text;
`

const QUpsertDocument = `--sql c47a1e93-2b58-4d6f-8e0a-5f9b3c1d7e22
insert into catalog_documents (name, body, updated_at)
values ($1::text, $2::jsonb, now())
on conflict (name) do update set
    body = excluded.body,
    updated_at = now();
`

const QDeleteDocument = `--sql 1e8d5f2a-7b3c-4a96-b0e4-8c2f6d9a3b51
delete from catalog_documents
where name = $1::text;
`
