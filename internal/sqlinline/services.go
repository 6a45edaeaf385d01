package sqlinline

const QInsertService = `--sql 2743adb9-d7da-44a3-8ff6-402db7351e37
insert into services (id, name, description, plan_contents)
values (gen_random_uuid(), $1, $2, $3::jsonb)
returning id, created_at;
`

const QSelectServiceByID = `--sql 7607c150-3c95-4540-92c8-cea1fc2ea3bf
select id, name, description, plan_contents, created_at, updated_at
from services
where id = $1::uuid
limit 1;
`

const QSelectServiceByName = `--sql 13c32b94-26ad-45b0-bccd-d149b7dcc8d3
select id, name, description, plan_contents, created_at, updated_at
from services
where name = $1
limit 1;
`

const QUpdateService = `--sql dae55996-5853-4bff-893f-73b85c1cb424
update services
set name = coalesce(nullif($2, ''), name),
    description = coalesce(nullif($3, ''), description),
    updated_at = now()
where id = $1::uuid
returning id, name, description, plan_contents, created_at, updated_at;
`

const QUpdateServiceContents = `--sql b18734d6-e4e7-4211-9104-4e5d68c8107d
update services
set plan_contents = $2::jsonb, updated_at = now()
where id = $1::uuid
returning id;
`

const QListServices = `--sql e19725eb-9a26-4b20-9999-956d69103b6b
select id, name, description, plan_contents, created_at, updated_at
from services
order by created_at;
`

const QListServicesByIDs = `--sql 3fbd0d23-33a1-4377-990c-814e95ee402c
select id, name, description, plan_contents, created_at, updated_at
from services
where id = any($1::uuid[])
order by created_at;
`
